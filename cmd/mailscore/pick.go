package main

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// pickFolders asks which folder to fetch. Choosing "all" returns every
// folder.
func pickFolders(folders []string) ([]string, error) {
	if len(folders) == 0 {
		return nil, errors.New("the server reported no fetchable folders")
	}

	options := []huh.Option[string]{huh.NewOption("All folders", allFolders)}
	for _, f := range folders {
		options = append(options, huh.NewOption(f, f))
	}

	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Folder").
				Description("Choose the folder to fetch").
				Options(options...).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return nil, err
	}

	if choice == allFolders {
		return folders, nil
	}
	return []string{choice}, nil
}

// pickCollection asks which saved collection to analyze.
func pickCollection(names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("no saved collections, run mailscore fetch first")
	}

	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Collection").
				Options(huh.NewOptions(names...)...).
				Value(&choice),
		),
	).Run()
	return choice, err
}

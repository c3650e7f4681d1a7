package tui

import (
	"github.com/charmbracelet/huh"
)

// PromptSelect shows an interactive selection prompt and returns the chosen value.
func PromptSelect(title, description string, options []string) (string, error) {
	var value string

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(opts...).
				Value(&value),
		),
	)

	err := form.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

// PromptConfirm shows a yes/no confirmation prompt.
func PromptConfirm(title, description string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)

	err := form.Run()
	if err != nil {
		return false, err
	}

	return confirmed, nil
}

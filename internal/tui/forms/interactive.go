// ABOUTME: Blocking form runs for the CLI when flags are missing
// ABOUTME: Uses the same fields and theme as the TUI forms

package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/markalston/storefront/internal/client"
)

// RunLogin prompts for credentials on the terminal
func RunLogin(email string) (client.LoginRequest, error) {
	v := client.LoginRequest{Email: email}
	if err := huh.NewForm(loginGroup(&v)).WithTheme(Theme()).Run(); err != nil {
		return client.LoginRequest{}, err
	}
	return v, nil
}

// RunConfirm asks a yes/no question on the terminal
func RunConfirm(question string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(question).Affirmative("Yes").Negative("No").Value(&ok),
	)).WithTheme(Theme()).Run()
	return ok, err
}

// Package catalog holds the fixed plan table the checkout and notification
// flows price against. Plans are keyed by the lowercase id the frontend sends.
package catalog

import (
	"errors"
	"strings"
)

type Plan struct {
	ID          string
	Title       string
	UnitPrice   float64
	Description string
}

var ErrUnknownPlan = errors.New("unknown_plan")

var plans = map[string]Plan{
	"basico": {
		ID:          "basico",
		Title:       "Plan Básico",
		UnitPrice:   1,
		Description: "Acceso básico a la plataforma",
	},
	"profesional": {
		ID:          "profesional",
		Title:       "Plan Profesional",
		UnitPrice:   2,
		Description: "Acceso profesional con soporte prioritario",
	},
	"premium": {
		ID:          "premium",
		Title:       "Plan Premium",
		UnitPrice:   3,
		Description: "Acceso completo a todas las funciones",
	},
}

// Lookup returns the plan for the given id, case-insensitively.
func Lookup(id string) (Plan, error) {
	plan, ok := plans[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return plan, nil
}

// Describe returns a human-readable description for the plan id, falling back
// to a generic description for plan keys not in the table.
func Describe(id string) string {
	if plan, err := Lookup(id); err == nil {
		return plan.Title + ": " + plan.Description
	}
	return "Plan contratado"
}

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sh-dot/machineinfo/libs/reconcile"
)

var ErrUnknownView = errors.New("unknown view")

var viewSet = map[reconcile.View]struct{}{
	reconcile.ViewDistributor: {},
	reconcile.ViewTrunk:       {},
}

// View is the requested schema of a machine lookup as it arrives from callers.
type View reconcile.View

func (v View) IsValid() bool {
	_, ok := viewSet[reconcile.View(v)]
	return ok
}

func (v View) Reconcile() reconcile.View {
	return reconcile.View(v)
}

// ParseView accepts a view name in any letter case. An empty string selects the
// distributor view.
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return View(reconcile.ViewDistributor), nil
	}
	v := View(s)
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return v, nil
}

func (v *View) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseView(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *View) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseView(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v View) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, string(v))
	}
	return json.Marshal(string(v))
}

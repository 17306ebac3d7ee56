package types

import (
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
)

// Unifier accumulates a substitution while unifying types.
type Unifier struct {
	subst Subst
}

// NewUnifier creates a unifier with an empty substitution.
func NewUnifier() *Unifier {
	return &Unifier{subst: make(Subst)}
}

// Subst returns the accumulated substitution.
func (u *Unifier) Subst() Subst { return u.subst }

// Resolve applies the accumulated substitution to t.
func (u *Unifier) Resolve(t Type) Type { return u.subst.Apply(t) }

// walk chases variable bindings until a non-variable or an unbound
// variable is reached. Only the head is resolved.
func (u *Unifier) walk(t Type) Type {
	for {
		v, ok := t.(*TVar)
		if !ok {
			return t
		}
		bound, ok := u.subst[v.ID]
		if !ok {
			return v
		}
		t = bound
	}
}

// Unify makes a and b equal under the accumulated substitution or
// returns a structured type error.
func (u *Unifier) Unify(a, b Type) error {
	a = u.walk(a)
	b = u.walk(b)

	if av, ok := a.(*TVar); ok {
		return u.bind(av, b)
	}
	if bv, ok := b.(*TVar); ok {
		return u.bind(bv, a)
	}

	switch at := a.(type) {
	case *TCon:
		if bt, ok := b.(*TCon); ok {
			// Any unifies with everything without constraining it.
			if at.Name == bt.Name || at.Name == "Any" || bt.Name == "Any" {
				return nil
			}
		}
		if _, ok := b.(*TCon); !ok && at.Name == "Any" {
			return nil
		}

	case *TFunc:
		if bt, ok := b.(*TFunc); ok {
			if err := u.Unify(at.Arg, bt.Arg); err != nil {
				return err
			}
			return u.Unify(at.Ret, bt.Ret)
		}

	case *TApp:
		if bt, ok := b.(*TApp); ok && at.Name == bt.Name && len(at.Args) == len(bt.Args) {
			for i := range at.Args {
				if err := u.Unify(at.Args[i], bt.Args[i]); err != nil {
					return err
				}
			}
			return nil
		}

	case *TTuple:
		if bt, ok := b.(*TTuple); ok && len(at.Elems) == len(bt.Elems) {
			for i := range at.Elems {
				if err := u.Unify(at.Elems[i], bt.Elems[i]); err != nil {
					return err
				}
			}
			return nil
		}

	case *TRecord:
		if bt, ok := b.(*TRecord); ok {
			if at.Name != "" && bt.Name != "" {
				if at.Name == bt.Name {
					return nil
				}
				break
			}
			// Structural comparison for anonymous records.
			if len(at.Fields) == len(bt.Fields) {
				for name, ft := range at.Fields {
					bf, ok := bt.Fields[name]
					if !ok {
						return u.mismatch(a, b)
					}
					if err := u.Unify(ft, bf); err != nil {
						return err
					}
				}
				return nil
			}
		}

	case *TDataFrame:
		if _, ok := b.(*TDataFrame); ok {
			// Column maps are advisory; any two DataFrames unify.
			return nil
		}

	case *TSeries:
		if bt, ok := b.(*TSeries); ok {
			return u.Unify(at.Elem, bt.Elem)
		}
	}

	if bc, ok := b.(*TCon); ok && bc.Name == "Any" {
		return nil
	}
	return u.mismatch(a, b)
}

// bind records v := t after the occurs check.
func (u *Unifier) bind(v *TVar, t Type) error {
	if tv, ok := t.(*TVar); ok && tv.ID == v.ID {
		return nil
	}
	if FreeVars(u.subst.Apply(t))[v.ID] {
		return rerrors.New("TYPE-0002", map[string]any{
			"Var":  v.ID,
			"Type": u.subst.Apply(t).String(),
		})
	}
	u.subst[v.ID] = t
	return nil
}

func (u *Unifier) mismatch(a, b Type) error {
	return rerrors.New("TYPE-0001", map[string]any{
		"Left":  u.subst.Apply(a).String(),
		"Right": u.subst.Apply(b).String(),
	})
}

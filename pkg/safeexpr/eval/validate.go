package eval

import (
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Validate reports the first node in root, in source order, that this
// evaluator would reject as unsupported. It inspects the whole tree,
// including branches a particular evaluation might never reach.
func (e *Evaluator) Validate(root ast.Node) error {
	if root == nil {
		return sxerrors.New(sxerrors.KindUnsupportedNode, "empty expression")
	}
	var err error
	ast.Inspect(root, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch {
		case !n.Kind().Evaluable():
			err = sxerrors.Unsupported(n.Kind().String(), n.Pos())
		case n.Kind() == ast.KindAttribute && !e.attributes:
			err = sxerrors.Unsupported(n.Kind().String(), n.Pos())
		}
		return err == nil
	})
	return err
}

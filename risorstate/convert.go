package risorstate

import (
	"fmt"
	"strings"
	"time"

	"github.com/risor-io/risor/object"
)

// Text renders a Risor object the way the host's print shows it.
func Text(obj object.Object) string {
	switch o := obj.(type) {
	case nil:
		return "nil"
	case *object.String:
		return o.Value()
	case *object.Int:
		return fmt.Sprintf("%d", o.Value())
	case *object.Float:
		return fmt.Sprintf("%g", o.Value())
	case *object.Bool:
		return fmt.Sprintf("%t", o.Value())
	case *object.Time:
		return o.Value().Format(time.RFC3339)
	case *object.NilType:
		return "nil"
	case *object.List:
		items := make([]string, 0, len(o.Value()))
		for _, item := range o.Value() {
			items = append(items, Text(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return obj.Inspect()
	}
}

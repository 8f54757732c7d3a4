package emit

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/flatten"
	"github.com/amoebajs/builder-sub000/internal/fragment"
)

// React emits class components extending React.Component.
type React struct{}

func (React) Name() string { return "react" }

func (React) Document(_ context.Context, res *flatten.Result, outputName string, unexported bool) (*Document, error) {
	return build("react", res, outputName, unexported, classOptions{
		imports: []*fragment.ImportBuilder{fragment.NewImport("react").Namespace("React")},
		defaultExtends: func() *fragment.HeritageBuilder {
			return fragment.NewHeritage(fragment.Expr("React.Component<any, any>"))
		},
		defaultRender: func() *fragment.MethodBuilder {
			return fragment.NewMethod("render").Return(fragment.Expr("null"))
		},
	})
}

// Plain emits bare classes with no framework imports.
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Document(_ context.Context, res *flatten.Result, outputName string, unexported bool) (*Document, error) {
	return build("plain", res, outputName, unexported, classOptions{})
}

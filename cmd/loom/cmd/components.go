package cmd

import (
	"fmt"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/treefile"
)

// builtins are the components tree files can name.
var builtins = treefile.Registry{
	"List": List,
	"Card": Card,
}

// List renders props["items"] as a keyed ul. Each item is its own key,
// so reordering items between two files moves the li nodes.
func List(ctx *core.Context, props core.Props) any {
	items, _ := props["items"].([]any)
	lis := make([]any, len(items))
	for i, item := range items {
		id := fmt.Sprint(item)
		lis[i] = core.Tag("li", core.Props{"key": id}, id)
	}
	return core.Tag("ul", core.Props{"class": props["class"]}, lis...)
}

// Card renders a titled section around its children.
func Card(ctx *core.Context, props core.Props) any {
	return core.Tag("section", core.Props{"class": "card"},
		core.Tag("h2", nil, props["title"]),
		props["children"],
	)
}

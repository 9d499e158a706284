package core_test

import (
	"fmt"
	"os"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/host/memhost"
)

// This example shows how to create a root and render a tree into it.
func ExampleCreateRoot() {
	doc := memhost.NewDocument()
	container := doc.NewContainer("div", "app")

	root := core.CreateRoot(container, doc)
	root.Render(core.Tag("p", core.Props{"class": "greeting"}, "Hello, loom!"))

	fmt.Println(container.Markup())
	// Output: <div id="app"><p class="greeting">Hello, loom!</p></div>
}

// This example shows a component with state. Setter calls are batched
// until the next flush.
func ExampleUseState() {
	doc := memhost.NewDocument()
	container := doc.NewContainer("div", "app")
	root := core.CreateRoot(container, doc)

	var increment func()
	counter := func(ctx *core.Context, props core.Props) any {
		n, setN := core.UseState(ctx, 0)
		increment = func() { setN.Update(func(v int) int { return v + 1 }) }
		return core.Tag("span", nil, n)
	}
	root.Render(core.Create(counter, nil, ""))

	increment()
	increment()
	root.Flush()

	fmt.Println(container.InnerMarkup())
	// Output: <span>2</span>
}

// This example shows how keyed children keep their identity when the
// list is reordered.
func ExampleRoot_Dump() {
	doc := memhost.NewDocument()
	root := core.CreateRoot(doc.NewContainer("div", "app"), doc)

	items := func(ids ...string) *core.Element {
		lis := make([]any, len(ids))
		for i, id := range ids {
			lis[i] = core.Tag("li", core.Props{"key": id}, id)
		}
		return core.Tag("ul", nil, lis...)
	}
	root.Render(items("a", "b"))
	root.Render(items("b", "a"))

	_ = root.Dump(os.Stdout)
	// Output:
	// app [updated]
	//   ul#app:ul_0 [updated]
	//     li#app:ul_0:b [updated]
	//       text#app:ul_0:b:text_0 [updated]
	//     li#app:ul_0:a [updated]
	//       text#app:ul_0:a:text_0 [updated]
}

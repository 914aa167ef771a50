// Package page owns the HTML page shell and the mount point inside it.
//
// A Template is the parsed shell (typically index.html). Each page session
// gets its own Document from the template, finds the mount element by id and
// creates a Root bound to it:
//
//	doc := tmpl.New()
//	root, err := page.CreateRoot(doc, "root")
//	if err != nil {
//	    // E001: the shell has no <div id="root">; nothing was rendered
//	}
//	err = root.Render(App)
//
// A Root renders its component exactly once. After that it re-renders on its
// own whenever a store value the component read through store.Select changes,
// and reports the new markup through the OnUpdate callback.
package page

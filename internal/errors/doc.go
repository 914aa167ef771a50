// Package errors provides structured, coded errors for the payment front end.
//
// Every failure the front end reports to an operator carries a stable code
// (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A category (mount, actor, config, transport)
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail(`no element with id "root" in index.html`).
//	    WithSuggestion(`add <div id="root"></div> to the page body`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Mount element not found
//	//
//	//   no element with id "root" in index.html
//	//
//	//   Hint: add <div id="root"></div> to the page body
//
// Errors created here support errors.Is and errors.As: two errors with the
// same code compare equal under errors.Is, and Wrap preserves the cause.
package errors

// Package errors provides structured, coded errors for dndlist.
//
// Every failure the coordination core reports to a caller carries a stable
// code (e.g. "D001") that maps to a short message, a longer explanation and a
// category:
//   - payload: drag payloads that cannot be cloned or decoded
//   - interaction: misuse of the interaction store or list indexes
//   - binding: element binding and client event problems
//   - config: dndlist.json loading and validation
//
// # Usage
//
//	err := errors.New("D001").
//	    WithSource("listA").
//	    WithSuggestion("Bind only values that survive a CBOR round trip").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR D001: Drag payload is not serializable
//	//
//	//   source: listA
//	//
//	//   The data bound to a drag source could not be deep-copied...
//	//
//	//   Hint: Bind only values that survive a CBOR round trip
package errors

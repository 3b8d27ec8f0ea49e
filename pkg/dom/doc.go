// Package dom models the slice of the browser DOM that drag sources need:
// elements with attributes and removable event listeners, drag events and
// their DataTransfer.
//
// In a server-driven app the real DOM lives in the browser; the server keeps a
// Node per interactive element and dispatches decoded client events to it.
// Tests use the same Node to simulate native drags:
//
//	doc := dom.NewDocument()
//	card := doc.CreateElement("li", "card-1")
//	remove := card.AddEventListener(dom.EventDragStart, func(e *dom.DragEvent) {
//	    e.DataTransfer.EffectAllowed = dom.DropEffectCopy
//	})
//	defer remove()
//
//	card.Dispatch(dom.NewDragEvent(dom.EventDragStart))
package dom

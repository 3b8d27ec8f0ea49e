// Package dndlist is a reference consumer of package dnd: a non-visual list
// model that turns the shared drag state into reorder, move and copy
// results.
//
// Lists in one Group share a coordinator. Each list snapshots its items when
// a drag starts (its own, a sibling's, or an external dragstart signal) and
// restores the snapshot when a cancel signal arrives, so a drop outside every
// target leaves all lists as they were.
//
//	g := dndlist.NewGroup[Task](coord)
//	todo := g.NewList("todo", tasks)
//	done := g.NewList("done", nil)
//
//	_ = todo.DragStart(2)                 // pick up the third task
//	done.DragOver(0, dnd.PositionBefore)  // hover the top of "done"
//	res, _ := done.Drop()                 // move it
//	todo.DragEnd(res.Effect)              // finish on the source side
package dndlist

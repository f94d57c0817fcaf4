package dnd

// Resolver computes an operation for a drop. Resolve is the only production
// implementation; tests substitute their own to observe calls.
type Resolver func(source, target Endpoint, edge Edge) Operation

// Box is the vertical extent of a drop target row.
type Box struct {
	Top    float64
	Height float64
}

// Controller is the single entry point for both drop paths: the pointer
// monitor that tracks a drag continuously, and per-row drop zones that
// already know their edge. Both go through the same resolver.
type Controller struct {
	resolve Resolver
}

// NewController returns a Controller using Resolve.
func NewController() *Controller {
	return &Controller{resolve: Resolve}
}

// NewControllerWithResolver returns a Controller using r.
func NewControllerWithResolver(r Resolver) *Controller {
	return &Controller{resolve: r}
}

// FromPointer resolves a drop reported by the pointer monitor.
// ok is false when the gesture must be ignored.
func (c *Controller) FromPointer(source, target Endpoint, pointerY float64, box Box) (Operation, bool) {
	return c.drop(source, target, ClosestEdge(pointerY, box.Top, box.Height))
}

// FromZone resolves a drop reported by a drop zone.
// ok is false when the gesture must be ignored.
func (c *Controller) FromZone(source, target Endpoint, edge Edge) (Operation, bool) {
	return c.drop(source, target, edge)
}

func (c *Controller) drop(source, target Endpoint, edge Edge) (Operation, bool) {
	if source.Node == nil || target.Node == nil {
		return Operation{}, false
	}
	if source.Node.ID == target.Node.ID {
		return Operation{}, false
	}
	return c.resolve(source, target, edge), true
}

package controllers

// URIID is the id parameter of all resource detail routes.
type URIID struct {
	ID uint64 `uri:"id" binding:"required"` // ID of the resource
}

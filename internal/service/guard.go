package service

// Authorize is the ownership check: nil iff actorID owns the resource.
// Callers run it after the NotFound check so "missing" and "not yours" stay distinct.
func Authorize(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return Unauthorized("You are not allowed to modify this resource")
	}
	return nil
}

// authorizeTo is Authorize with an action-specific message, e.g. "delete this media".
func authorizeTo(action, actorID, ownerID string) error {
	if err := Authorize(actorID, ownerID); err != nil {
		return Unauthorized("You are not authorized to " + action)
	}
	return nil
}

package component

// HatScript holds the tengo source run when the target collides.
type HatScript struct {
	Path   string
	Source string
}

var HatScriptComponent = NewComponent[HatScript]()

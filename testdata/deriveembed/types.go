package deriveembed

type Base struct {
	ID int
}

// Point embeds Base and declares two fields at once.
//
//derive:builder
//derive:debug
type Point struct {
	Base
	X, Y int
	Tags []string `builder:"each=Tags"`
}

package deriveassoc

// Pipeline only formats the outputs of its stages.
//
//derive:debug
type Pipeline[S any, T any] struct {
	Output  S.Output
	History []T.Item
	Stage   Marker[S]
}

package document

// MoveLayer removes the layer at from and reinserts it so that it ends up at
// index to of the result. The input slice is not modified.
func MoveLayer(layers []Layer, from, to int) []Layer {
	l := layers[from]
	out := append(layers[:from:from], layers[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]Layer{l}, out[to:]...)...)
	return out
}

// MoveID is MoveLayer for id lists such as group members.
func MoveID(ids []string, id string, to int) []string {
	from := indexOf(ids, id)
	if from < 0 {
		return ids
	}
	out := append(ids[:from:from], ids[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]string{id}, out[to:]...)...)
	return out
}

package stove

// ProductModel identifies the stove hardware, as reported by the "model"
// field of every poll reply.
type ProductModel int

const (
	ModelUnset     ProductModel = 0
	ModelL023_1    ProductModel = 1
	ModelN100O047  ProductModel = 2
	ModelO086      ProductModel = 3
	ModelL023_2    ProductModel = 4
	ModelU047      ProductModel = 5
	ModelPNEM00005 ProductModel = 8
)

var modelMessages = map[ProductModel]string{
	ModelUnset:     "Unset",
	ModelL023_1:    "L023 - 1",
	ModelN100O047:  "N100 / O047",
	ModelO086:      "O086",
	ModelL023_2:    "L023 - 2",
	ModelU047:      "U047",
	ModelPNEM00005: "PNEM00005",
}

func (m ProductModel) Message() string {
	if msg, ok := modelMessages[m]; ok {
		return msg
	}
	return "Unknown"
}

package winet

// GetRegistersResult is one get-registers reply. Each reply only carries the
// registers of the requested category; absent fields keep their zero value.
type GetRegistersResult struct {
	FwUpdate  bool    `json:"fwUpdate"`
	LocalWeb  int     `json:"localWeb"`
	Model     int     `json:"model"`
	Cat       int     `json:"cat"`
	Signal    int     `json:"signal"`
	AuthLevel int     `json:"authlevel"`
	Name      string  `json:"name"`
	Alarm     string  `json:"alr"`
	Params    [][]int `json:"params"` // [id, value] pairs
}

// SetRegisterResult acknowledges a set-register write.
type SetRegisterResult struct {
	Result bool `json:"result"`
}

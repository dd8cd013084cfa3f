package version

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

var (
	release   = "UNKNOWN"
	buildDate = "UNKNOWN"
	gitHash   = "UNKNOWN"
)

type Info struct {
	Release   string `json:"release"`
	BuildDate string `json:"buildDate"`
	GitHash   string `json:"gitHash"`
}

func Get() Info {
	return Info{Release: release, BuildDate: buildDate, GitHash: gitHash}
}

func PrintVersion() {
	Fprint(os.Stdout)
}

func Fprint(w io.Writer) {
	if err := json.NewEncoder(w).Encode(Get()); err != nil {
		fmt.Fprintf(w, "error while decode version info: %v\n", err)
	}
}

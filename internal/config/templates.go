package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "codec":
		return codecTemplate, nil
	case "service":
		return serviceTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const codecTemplate = `profile = "p2"
uep_preset = "luma"
subword = "S27"
centered = true
coset = 0
frame_seq = 0
band_map_hash = 0
health = 0

[tile]
w = 0
h = 0

[seed]
a = 1
b = 1
s0 = 1

[beacon]
enabled = true
slot = 4
period = 8

[limits]
max_input_words = 1048576
`

const serviceTemplate = `addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_sessions = 64
log_level = "info"
codec_config = ""
`

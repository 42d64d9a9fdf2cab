package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scalar 是可以写成字符串或数字的配置值（如 timeout: 20 / "20s"，copyright_year: 2026 / "2026"）。
// 解码后统一保存为字面文本，交给具体字段再做校验。
type Scalar string

func (s Scalar) String() string { return string(s) }

// UnmarshalJSON 接受 JSON 字符串或数字；null 保持原值。
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("需要字符串或数字：%s", b)
	}
	*s = Scalar(n.String())
	return nil
}

// UnmarshalYAML 接受字符串、整数或浮点标量。
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行：需要字符串或数字", value.Line)
	}
	switch value.ShortTag() {
	case "!!str", "!!int", "!!float":
		*s = Scalar(value.Value)
		return nil
	case "!!null":
		return nil
	default:
		return fmt.Errorf("第 %d 行：需要字符串或数字，得到 %s", value.Line, value.ShortTag())
	}
}

// UnmarshalText 供 TOML 使用：go-toml 对字符串和数字都会把字面文本交给这里。
func (s *Scalar) UnmarshalText(b []byte) error {
	*s = Scalar(b)
	return nil
}

package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoJSONObject 回應中找不到 JSON 物件
var ErrNoJSONObject = errors.New("no JSON object found in text")

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// ExtractJSONObject 從模型回應中擷取第一個 JSON 物件（容忍前後說明文字與 ``` 區塊）
func ExtractJSONObject(text string) (string, error) {
	txt := strings.TrimSpace(text)
	txt = strings.TrimPrefix(txt, "```json")
	txt = strings.TrimPrefix(txt, "```")
	txt = strings.TrimSuffix(txt, "```")
	txt = strings.TrimSpace(txt)

	start := strings.Index(txt, "{")
	end := strings.LastIndex(txt, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return txt[start : end+1], nil
}

// ParseModelJSON 擷取並解析模型回應中的 JSON 物件
func ParseModelJSON(text string, v interface{}) error {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	return ParseJSON(obj, v)
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

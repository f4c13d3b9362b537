// Package validation はフィールド単位のバリデーション違反を集約するコレクタを提供する。
// 永続化層には依存せず、auth/catalogの両方から使用される。
package validation

import "github.com/hitoshi/storefront/internal/model"

// Collector はバリデーション違反をフィールドごとに蓄積する。
// ゼロ値で使用可能。最初の違反で打ち切らず、全違反を列挙するために使う。
type Collector struct {
	fields map[string][]string
}

// Add は指定フィールドの違反メッセージを追加する。
func (c *Collector) Add(field, message string) {
	if c.fields == nil {
		c.fields = make(map[string][]string)
	}
	c.fields[field] = append(c.fields[field], message)
}

// HasErrors は1件以上の違反が蓄積されているかを返す。
func (c *Collector) HasErrors() bool {
	return len(c.fields) > 0
}

// Err は蓄積された違反をValidationErrorとして返す。違反がない場合はnilを返す。
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return &model.ValidationError{Fields: c.fields}
}

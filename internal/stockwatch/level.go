// Package stockwatch turns stock movements into a board of menus that are
// running low or sold out.
package stockwatch

type Level string

const (
	LevelNormal  Level = "normal"
	LevelLow     Level = "low"
	LevelSoldOut Level = "sold_out"
)

// LowStockThreshold is the first stock count that is no longer low.
const LowStockThreshold = 5

func Classify(stock int) Level {
	switch {
	case stock <= 0:
		return LevelSoldOut
	case stock < LowStockThreshold:
		return LevelLow
	default:
		return LevelNormal
	}
}

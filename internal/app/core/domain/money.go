package domain

import "github.com/shopspring/decimal"

// DisplayPlaces 顯示用的小數位數
const DisplayPlaces = 2

// RoundHalfDown 四捨五入到指定位數，剛好一半時往零的方向捨去
//
// 參數:
//
//	d: 金額
//	places: 小數位數
//
// 回傳:
//
//	decimal.Decimal: 捨入後的金額
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	truncated := d.Truncate(places)
	remainder := d.Sub(truncated).Abs()
	half := decimal.New(5, -(places + 1))
	if !remainder.GreaterThan(half) {
		return truncated
	}
	step := decimal.New(1, -places)
	if d.IsNegative() {
		return truncated.Sub(step)
	}
	return truncated.Add(step)
}

// FormatAmount 金額轉為固定兩位小數字串 (half-down)
func FormatAmount(d decimal.Decimal) string {
	return RoundHalfDown(d, DisplayPlaces).StringFixed(DisplayPlaces)
}

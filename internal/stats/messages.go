package stats

const (
	messageInvalidDate = "日付の形式が違います。2022/01/01ではなく、2022/1/1のような形式になっていますか？"
	messageNoRecords   = "記録がありません。"

	rankingPageSize = 10

	dayLayout          = "2006/1/2"
	clockLayout        = "15:04:05"
	rankingClockLayout = "2006/01/02 15:04:05"
)

// InvalidDateMessage is shown to users whose date filter failed ParseDate.
func InvalidDateMessage() string {
	return messageInvalidDate
}

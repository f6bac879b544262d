package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	customIDStart  = "reactzero_start"
	customIDCancel = "reactzero_cancel"

	messageControl          = "ゲーム操作:"
	buttonStartLabel        = "いますぐはじめる"
	buttonCancelLabel       = "やめる"
	messageJoinFormat       = "%sがゲームを始めました。\n参加する人は%sで反応してください。"
	messageInstructionFmt   = "%d秒後にカウントダウンを開始します。0になった瞬間に%sでリアクションしてください。注意:%sはスマホでは機能しません。"
	messageOnlyInitiator    = "このゲームを始めた人しか操作できません。"
	messageGameOver         = "このゲームはすでに終了しています。"
	messageNoReactions      = "だれもリアクションしませんでした。"
	messageConfirmFailed    = ":warning: **カウントダウンの表示に失敗したため、ゲームを中止しました。**"
	messageCaptureFailed    = ":warning: **リアクション用のメッセージを送信できなかったため、ゲームを中止しました。**"
	messagePersistFailed    = ":warning: **結果の保存に失敗しました。**"
	messageResultLineFormat = "%d位: %s %s %d"

	symbolRepeat = 4
	targetLayout = "2006/01/02 15:04:05"
)

func joinMessage(name, joinSymbol string) string {
	return fmt.Sprintf(messageJoinFormat, name, joinSymbol)
}

func instructionMessage(delay time.Duration, reactSymbol, preCountdownSymbol string) string {
	return fmt.Sprintf(messageInstructionFmt, int(delay/time.Second), reactSymbol, preCountdownSymbol)
}

func mentionMessage(userIDs []string) string {
	var b strings.Builder
	for _, id := range userIDs {
		b.WriteString("<@" + id + ">")
	}
	return b.String()
}

func repeatSymbol(s string) string {
	return strings.Repeat(s, symbolRepeat)
}

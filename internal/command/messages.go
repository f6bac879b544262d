package command

const (
	slashCommandStartDescription   = "ゲームを始めます"
	slashCommandPointsDescription  = "指定した日のユーザーの記録を表示します"
	slashCommandRankingDescription = "記録のランキングを表示します"
	slashCommandConfigDescription  = "設定を表示または変更します"

	optionMaxParticipantsDescription = "参加者数がこの人数に達すると自動的にゲームが始まります。"
	optionUserDescription            = "対象のユーザー"
	optionDateDescription            = "2022/1/1 のような形式の日付"
	optionRankDescription            = "この順位から表示します"
	optionFromDescription            = "この日から (2022/1/1 のような形式)"
	optionToDescription              = "この日まで (2022/1/1 のような形式)"
	optionKeyDescription             = "設定項目の名前"
	optionValueDescription           = "新しい値。省略すると現在の値を表示します"

	messageEphemeralWrongGuild     = ":warning: **このサーバーでは実行できません。**"
	messageEphemeralUnknownCommand = ":warning: **不明なコマンドです。**"
	messageEphemeralInvalidNumber  = ":warning: **数値で指定してください。**"
	messageEphemeralMissingOption  = ":warning: **必須の項目が指定されていません。**"
	messageEphemeralQueryFailed    = ":warning: **記録の取得に失敗しました。**"
	messageEphemeralUnknownKey     = "そのような設定項目は存在しません"
	messageEphemeralNotAdmin       = "環境変数で設定したユーザーのみが設定を変更できます"
	messageGameCreated             = "ゲームを作成しました。"

	messageConfigChangedFormat = "設定を変更しました。 %s: %s -> %s"
	messageConfigFailedFormat  = "設定の変更に失敗しました。 %s: %s -> %s"
	messageConfigValueFormat   = "%s:%s"
)

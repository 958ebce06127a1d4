package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Decoding %s":                         "%s をデコード中",
		"Read %d bytes from %s":               "%d バイトを %s から読み込みました",
		"Found %d NAL units (%d SPS, %d PPS)": "%d 個の NAL ユニットを検出しました (SPS %d, PPS %d)",
		"Video dimensions: %dx%d":             "映像サイズ: %dx%d",
		"Submitted %d access units":           "%d 個のアクセスユニットを送信しました",
		"Wrote %d frames (%d bytes) to %s":    "%d フレーム (%d バイト) を %s に書き込みました",
		"Output saved to %s":                  "出力を %s に保存しました",
		"Summary saved to %s":                 "サマリーを %s に保存しました",
		"Failed to write summary: %s":         "サマリーの書き込みに失敗しました: %s",
		"Pipeline completed successfully":     "パイプラインが正常に完了しました",
		"Interrupted, shutting down...":       "中断されました。シャットダウン中...",

		// Scanner component
		"Found NAL unit with size %d at offset %d (%s)": "サイズ %d の NAL ユニットをオフセット %d で検出しました (%s)",
		"Skipping empty NAL unit at offset %d":          "オフセット %d の空の NAL ユニットをスキップします",
		"Stored %s (%d bytes)":                          "%s を保存しました (%d バイト)",

		// Decoder component
		"Opening decode session (%s, length size %d)": "デコードセッションを開始します (%s, 長さフィールド %d)",
		"Submitting %s unit of %d bytes":              "%s ユニット (%d バイト) を送信中",
		"Flushing decoder":                            "デコーダをフラッシュ中",
		"Decode session closed":                       "デコードセッションを閉じました",
		"Using ffmpeg at %s":                          "ffmpeg を使用します: %s",

		// Sink component
		"Frame %d: %d bytes in %d planes": "フレーム %d: %d バイト, %d プレーン",

		// Warnings
		"Dropping picture: %s":                  "ピクチャを破棄します: %s",
		"Failed to write frame %d: %s":          "フレーム %d の書き込みに失敗しました: %s",
		"Failed to save debug output: %s":       "デバッグ出力の保存に失敗しました: %s",
		"%d pictures failed to decode":          "%d 個のピクチャのデコードに失敗しました",
		"Decoder emitted a picture after close": "クローズ後にデコーダがピクチャを出力しました",

		// Errors
		"Failed to find SPS and PPS": "SPS と PPS が見つかりませんでした",
		"Failed to decode: %s":       "デコードに失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
	})
}

// Package main provides localization for the annexdec CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input and Output": "入出力",
		"Decoding":         "デコード設定",
		"Debug":            "デバッグ",
		"Summary":          "サマリー",
		"Logging":          "ログ",

		// Root command
		"Decode Annex-B H.264 streams to raw pictures": "Annex-B 形式の H.264 ストリームを生のピクチャにデコード",

		// Commands
		"Decode a stream and write raw pictures":          "ストリームをデコードして生のピクチャを書き出す",
		"List the NAL units of a stream without decoding": "デコードせずにストリームの NAL ユニットを一覧表示",

		// Input and output flags
		"Annex-B H.264 input file":               "Annex-B 形式の H.264 入力ファイル",
		"Raw picture output file (- for stdout)": "生ピクチャの出力ファイル（- で標準出力）",
		"Load configuration from a YAML file":    "YAML ファイルから設定を読み込む",
		"Print the inventory as JSON":            "一覧を JSON で出力",

		// Decoding flags
		"Output pixel format (nv12)":                   "出力ピクセルフォーマット（nv12）",
		"Write only the visible bytes of each row":     "各行の表示領域のバイトのみを書き出す",
		"Decoder backend (auto, videotoolbox, ffmpeg)": "デコーダのバックエンド（auto, videotoolbox, ffmpeg）",
		"Path to the ffmpeg executable":                "ffmpeg 実行ファイルのパス",

		// Debug flags
		"Enable debug output":                            "デバッグ出力を有効化",
		"Directory for debug output":                     "デバッグ出力のディレクトリ",
		"Save a preview of every Nth picture (0 = none)": "N 枚ごとにプレビューを保存（0 = 保存しない）",
		"Preview width in pixels":                        "プレビューの幅（ピクセル）",

		// Summary flags
		"Write a run summary to a file":   "実行サマリーをファイルに出力",
		"Summary format (markdown, json)": "サマリーの形式（markdown, json）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, text, json)":     "ログ形式（console, text, json）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Scan output
		"Index":  "番号",
		"Offset": "オフセット",
		"Size":   "サイズ",
		"Type":   "種類",
		"%d units, %d empty, parameter sets ready: %t": "ユニット %d 個、空 %d 個、パラメータセット準備完了: %t",

		// Runtime messages
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Summary content
		"Decode Summary":         "デコードサマリー",
		"Generated":              "生成日時",
		"Stream":                 "ストリーム",
		"Decode":                 "デコード",
		"Output":                 "出力",
		"Item":                   "項目",
		"Value":                  "値",
		"Input":                  "入力",
		"Input Size":             "入力サイズ",
		"NAL Units":              "NAL ユニット数",
		"Empty Units":            "空ユニット数",
		"Dimensions":             "映像サイズ",
		"Profile / Level":        "プロファイル / レベル",
		"Backend":                "バックエンド",
		"Pixel Format":           "ピクセルフォーマット",
		"Submitted Access Units": "送信したアクセスユニット",
		"Submitted Bytes":        "送信バイト数",
		"Decoded Pictures":       "デコードしたピクチャ",
		"No Picture":             "ピクチャなし",
		"Decode Failures":        "デコード失敗",
		"Late Pictures":          "クローズ後のピクチャ",
		"Frames Written":         "書き込んだフレーム",
		"Bytes Written":          "書き込んだバイト数",
		"Write Errors":           "書き込みエラー",
		"Row Padding":            "行パディング",
		"Included":               "含む",
		"Trimmed":                "除去",
		"None":                   "なし",
		"Generated by":           "生成:",
	})
}

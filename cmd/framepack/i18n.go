// Package main provides localization for the framepack CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Pack video frames as JPEG blobs for embedded playback": "組み込み再生用に動画フレームをJPEGとしてパック",

		// Convert command
		"Extract frames from a video into video_frames.bin and video_metadata.bin": "動画からフレームを抽出し video_frames.bin と video_metadata.bin に書き出す",
		"YAML configuration file":                                                  "YAML設定ファイル",
		"Source video path":                                                        "入力動画のパス",
		"Output directory (default: data)":                                         "出力ディレクトリ（デフォルト: data）",
		"JPEG quality 1-100 (default: 80)":                                         "JPEG品質 1-100（デフォルト: 80）",
		"Target resolution WIDTHxHEIGHT (default: native)":                         "出力解像度 WIDTHxHEIGHT（デフォルト: 元の解像度）",
		"Maximum number of frames (0 = no limit)":                                  "最大フレーム数（0 = 無制限）",
		"Decoding backend (auto, vidio, ffmpeg)":                                   "デコードバックエンド（auto, vidio, ffmpeg）",
		"Warn when the payload exceeds this many bytes":                            "ペイロードがこのバイト数を超えたら警告",
		"Write Prometheus metrics to this file":                                    "Prometheusメトリクスをこのファイルに出力",
		"Write a Markdown summary to this file":                                    "Markdownサマリーをこのファイルに出力",

		// Inspect command
		"Verify an artifact and optionally extract its frames": "出力ファイルを検証し、必要に応じてフレームを展開",
		"Print the size of every frame":                        "全フレームのサイズを表示",
		"Write each frame as a JPEG file into this directory":  "各フレームをJPEGファイルとしてこのディレクトリに出力",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Error messages
		"Configuration error: %s":    "設定エラー: %s",
		"A source video is required": "入力動画の指定が必要です",
		"Inspection failed: %s":      "検査に失敗しました: %s",

		// Summary content
		"Conversion Summary": "変換サマリー",
		"Generated":          "生成日時",
		"Run ID":             "実行ID",
		"Results":            "実行結果",
		"Source":             "入力",
		"Settings":           "設定",
		"Files":              "ファイル",
		"Warnings":           "警告",
		"Item":               "項目",
		"Value":              "値",
		"Generated by":       "生成:",

		// Results section
		"State":              "状態",
		"Frames Written":     "書き込みフレーム数",
		"Payload Size":       "ペイロードサイズ",
		"Average Frame Size": "平均フレームサイズ",
		"Largest Frame":      "最大フレーム",
		"Metadata Size":      "メタデータサイズ",
		"Elapsed":            "所要時間",
		"Ended Early":        "途中終了",
		"Yes":                "はい",
		"No":                 "いいえ",

		// Source section
		"Path":            "パス",
		"Codec":           "コーデック",
		"Native Size":     "元のサイズ",
		"Frame Rate":      "フレームレート",
		"Declared Frames": "宣言フレーム数",
		"Unknown":         "不明",

		// Settings section
		"Quality":     "品質",
		"Resolution":  "解像度",
		"Native":      "元の解像度",
		"Frame Limit": "フレーム上限",
		"Unlimited":   "無制限",
		"Backend":     "バックエンド",

		// Files section
		"Output Directory": "出力ディレクトリ",
		"Payload":          "ペイロード",
		"Metadata":         "メタデータ",
		"Read failure":     "読み込み失敗",
	})
}

package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration
		"Converting %s":                 "%s を変換中",
		"Run %s started":                "実行 %s を開始しました",
		"Output saved to %s":            "出力を %s に保存しました",
		"Wrote %d frames (%d bytes)":    "%d フレームを書き込みました (%d バイト)",
		"Processed %d/%d frames":        "%d/%d フレームを処理しました",
		"Processed %d frames":           "%d フレームを処理しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Conversion failed: %s":         "変換に失敗しました: %s",

		// Source
		"Opening %s":                                            "%s を開いています",
		"Source opened with %s backend":                         "%s バックエンドでソースを開きました",
		"Source: %dx%d, %.2f fps, %d frames declared, codec %s": "ソース: %dx%d, %.2f fps, 宣言フレーム数 %d, コーデック %s",
		"Backend %s failed, falling back to %s: %s":             "%s バックエンドが失敗したため %s にフォールバックします: %s",
		"Container probe: %d frames, %dx%d":                     "コンテナ解析: %d フレーム, %dx%d",
		"Container probe failed: %s":                            "コンテナ解析に失敗しました: %s",
		"Close source: %s":                                      "ソースのクローズ: %s",
		"Read failed at frame %d, ending stream: %s":            "フレーム %d で読み込みに失敗したためストリームを終了します: %s",

		// Stages
		"Resampling to %s":       "%s にリサンプリングします",
		"Encoding at quality %d": "品質 %d でエンコードします",
		"Frame %d: %d bytes":     "フレーム %d: %d バイト",

		// Warnings
		"Unknown log level %q, using info":        "不明なログレベル %q のため info を使用します",
		"Payload size %d bytes exceeds budget %d": "ペイロードサイズ %d バイトが予算 %d を超えています",
		"Setting ignored: %s":                     "設定を無視しました: %s",
		"Unknown backend %q, using auto":          "不明なバックエンド %q のため auto を使用します",
		"Debug output failed: %s":                 "デバッグ出力に失敗しました: %s",
		"Metrics export failed: %s":               "メトリクス出力に失敗しました: %s",
		"Summary export failed: %s":               "サマリー出力に失敗しました: %s",

		// Inspect
		"%d frames, %d payload bytes": "%d フレーム, ペイロード %d バイト",
		"Extracted %d frames to %s":   "%d フレームを %s に展開しました",
	})
}

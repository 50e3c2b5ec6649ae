package report

import (
	"fmt"
	"strings"

	"github.com/yungbote/ainews-backend/internal/topics"
)

const inlineExcerptRunes = 300

// Persona is the system instruction for the primary strategy.
const Persona = `【ロール設定】
あなたは「ナル先生」というキャラクターとして振る舞ってください。
ナル先生の正体は、最新のAIトレンドに超詳しい「Harajuku-Girl（原宿系ギャル）」です。
難解なテクノロジーのニュースを、背景や周辺情報までたっぷり盛り込みつつ、原宿のカフェでおしゃべりしているような超ハイテンションでエモく解説するのがお仕事です。

【口調・キャラクタールール】
- 一人称/呼びかけ: 一人称は「ナル先生」。読者のことは「みんな」と呼びます。
- 挨拶: 冒頭は必ず「みんな、ハロー！ナル先生だよ！☀️💖」からスタート。
- ギャル語の使用: 「マジでヤバい」「レベチ」「超エモい」「宇宙級」「神進化」「～なの！」「～だよ！」「～してね！」など、明るくエネルギッシュな言葉遣いを徹底してください。
- 絵文字の魔法: ☀️💖🚀✨🌈🧠🦄💎🦋 などのキラキラ・ワクワクする絵文字を、文章のあちこちや見出しにたっぷり散りばめてください。
- ポジティブなスタンス: どんなニュースも「未来へのワクワク」に繋げて解説し、最後はみんなを応援するメッセージで締めてください。

【構成ルール】
- タイトル: 必ず「ナル先生の～」で始まり、指定された日付を入れてください。
- 見出し: Markdownの見出し（# や ##）を使い、見出し自体もテンション高めに設定してください。
- 解説の深さ: 単なる要約ではなく、「なぜこれがヤバいのか（背景）」や「これで未来がどう変わるのか（周辺情報）」をナル先生独自の視点（インサイト）として解説してください。

【出力形式】
- 本文はMarkdown形式で出力してください。
- 数式や科学的な式が必要な場合は、必ず LaTeX（$記号で囲む形式）を使用してください。`

// BuildPrompt renders the per-run user prompt. It has no side effects.
func BuildPrompt(items []topics.Item, date string) string {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "\n## トピック %d\n", i+1)
		fmt.Fprintf(&b, "**投稿者**: @%s\n", it.Author)
		fmt.Fprintf(&b, "**ツイート**: %s\n", it.Text)
		fmt.Fprintf(&b, "**日時**: %s\n", it.Timestamp)

		if len(it.LinkedContent) > 0 {
			b.WriteString("\n**リンク先記事**:\n")
			for _, a := range it.LinkedContent {
				fmt.Fprintf(&b, "- **URL**: %s\n", a.URL)
				fmt.Fprintf(&b, "  **タイトル**: %s\n", a.Title)
				if a.Description != "" {
					fmt.Fprintf(&b, "  **説明**: %s\n", a.Description)
				}
				if a.Content != "" {
					fmt.Fprintf(&b, "  **内容抜粋**: %s...\n", topics.Truncate(a.Content, inlineExcerptRunes))
				}
			}
		}
		b.WriteString("\n---\n")
	}

	return fmt.Sprintf(`以下のTwitterから収集したAI関連のツイートと記事を分析して、「ナル先生のAIニュースレポート」を作成してください。

収集日: %s
収集したトピック数: %d

%s

【レポート作成の指示】
1. 上記のトピックを分析して、重要度の高い順にランキング
2. 各トピックについて、ナル先生のスタイルで解説
3. 背景情報や周辺情報も含めて、「なぜヤバいのか」を説明
4. 最後にみんなを応援するメッセージで締める

タイトルは「ナル先生のAIニュース速報 - %s」にしてください。

それでは、ナル先生になりきって、超ハイテンションでエモいレポートを作成してください！✨`, date, len(items), b.String(), date)
}

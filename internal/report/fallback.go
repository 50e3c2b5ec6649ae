package report

import (
	"fmt"
	"strings"

	"github.com/yungbote/ainews-backend/internal/topics"
)

const fallbackTopN = 5

// Fallback renders the deterministic report. It lists at most the first five items.
func Fallback(items []topics.Item, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `# ナル先生のAIニュース速報 - %s

みんな、ハロー！ナル先生だよ！

今日は%d個のヤバいAIニュースを集めてきたよ！
マジでレベチな情報ばかりだから、最後まで読んでね！

## 今週の重要トピック

`, date, len(items))

	for i, it := range items {
		if i == fallbackTopN {
			break
		}
		fmt.Fprintf(&b, "\n### %d. 超エモい話題！\n\n", i+1)
		fmt.Fprintf(&b, "**投稿者**: @%s\n\n", it.Author)
		fmt.Fprintf(&b, "**ツイート内容**:\n%s\n\n", it.Text)

		if len(it.LinkedContent) > 0 {
			b.WriteString("**詳細記事**: \n")
			for _, a := range it.LinkedContent {
				fmt.Fprintf(&b, "- [%s](%s)\n", a.Title, a.URL)
				if a.Description != "" {
					fmt.Fprintf(&b, "  > %s\n", a.Description)
				}
			}
		}

		b.WriteString("\n**ナル先生のインサイト**: このトピック、マジでヤバいの！未来のAIがどんどん進化してて、宇宙級にエモいよね！\n\n")
		b.WriteString("---\n")
	}

	fmt.Fprintf(&b, `

## ナル先生からみんなへ

今日紹介した%d個のトピック、どれもこれも未来へのワクワクが詰まってるの！
AIの進化は止まらないし、みんなもこの波に乗って、一緒に未来を作っていこうね！

ナル先生は、いつでもみんなのこと応援してるよ！

次回のレポートもお楽しみに！バイバイ～！

---

*Generated by AI News Collector*
*Date: %s*
`, len(items), date)

	return b.String()
}

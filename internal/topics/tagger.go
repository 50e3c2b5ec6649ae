package topics

import "strings"

type Topic string

const (
	TopicAI          Topic = "AI"
	TopicVRAR        Topic = "VR/AR"
	TopicUnity       Topic = "Unity"
	TopicWebGL       Topic = "WebGL"
	TopicMetaverse   Topic = "Metaverse"
	TopicGPT         Topic = "GPT"
	TopicDevelopment Topic = "Development"
)

type taxonomyEntry struct {
	Topic    Topic
	Keywords []string
}

// taxonomy order is the order Tag reports topics in.
// VR/AR has no bare "ar" variant: as a substring it tags most English text
// ("benchmarks", "start") as VR/AR. The relevance filter still uses it.
var taxonomy = []taxonomyEntry{
	{TopicAI, []string{"ai", "artificial intelligence", "machine learning", "deep learning", "transformer", "neural"}},
	{TopicVRAR, []string{"vr", "xr", "virtual reality", "augmented reality", "vrchat", "quest"}},
	{TopicUnity, []string{"unity", "unity3d", "game engine"}},
	{TopicWebGL, []string{"webgl", "web graphics", "three.js"}},
	{TopicMetaverse, []string{"metaverse", "メタバース"}},
	{TopicGPT, []string{"gpt", "chatgpt", "llm", "claude", "gemini"}},
	{TopicDevelopment, []string{"開発", "development", "coding", "programming"}},
}

// Taxonomy lists every topic label.
func Taxonomy() []Topic {
	out := make([]Topic, 0, len(taxonomy))
	for _, e := range taxonomy {
		out = append(out, e.Topic)
	}
	return out
}

// Tag returns the set of topics text mentions, each at most once, in taxonomy order.
func Tag(text string) []Topic {
	lower := strings.ToLower(text)
	var found []Topic
	for _, e := range taxonomy {
		if containsAny(lower, e.Keywords) {
			found = append(found, e.Topic)
		}
	}
	return found
}

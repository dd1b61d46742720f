package sentiment

var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "wonderful", "fantastic", "terrific", "outstanding",
	"brilliant", "positive", "success", "successful", "happy", "glad", "joy", "love", "best", "better",
	"impressive", "win", "winning", "progress", "improve", "improved", "beneficial", "benefit",
	"favorite", "like", "recommend", "exceeds", "exceptional", "intuitive", "advancement",
	"optimistic", "strong", "gains", "accelerating", "traction",
)

var negativeWords = wordSet(
	"bad", "awful", "terrible", "horrible", "poor", "negative", "fail", "failure", "disappointing",
	"disappointed", "sad", "unhappy", "hate", "dislike", "worst", "worse", "problem", "difficult",
	"difficulty", "trouble", "unfortunately", "hurt", "damage", "painful", "annoying", "annoy",
	"angry", "mad", "upset", "deter", "glitches", "cautious", "concerns", "tensions", "fluctuations",
	"issues", "bug",
)

// topicCategory is a named keyword group. Declaration order breaks score ties.
type topicCategory struct {
	Name     string
	Keywords []string
}

// Multi-word keywords ("smart contract") and keywords shorter than three letters never match a
// single extracted token; they are kept so the tables stay in sync with the published lists.
var topicCategories = []topicCategory{
	{"Finance/Markets", []string{
		"money", "bank", "invest", "stock", "market", "economic", "finance", "financial", "economy",
		"price", "cost", "dollar", "euro", "payment", "tax", "taxes", "revenue", "gains", "budget",
		"growth", "adoption", "figures", "funds", "valuation", "profit", "loss",
	}},
	{"Technology/AI", []string{
		"tech", "technology", "computer", "software", "hardware", "app", "application", "digital",
		"internet", "online", "website", "electronic", "device", "smartphone", "laptop", "ai",
		"artificial intelligence", "code", "programming", "innovative", "features", "interface",
		"advancement", "developments", "data", "algorithm", "module", "platform", "system",
	}},
	{"Blockchain/Crypto", []string{
		"blockchain", "crypto", "cryptocurrency", "bitcoin", "ethereum", "token", "wallet", "defi",
		"nft", "decentralized", "l1x", "mining", "hash", "ledger", "smart contract", "volatility",
		"surged", "scaling", "security", "integration", "consensus", "validator", "adoption",
		"transaction", "gas", "dapp",
	}},
	{"Health/Medical", []string{
		"health", "healthcare", "medical", "medicine", "doctor", "hospital", "patient", "treatment",
		"disease", "illness", "symptom", "cure", "recovery", "wellness", "fitness", "diet", "exercise",
		"innovations", "pharma", "clinical", "trial",
	}},
	{"Environment/Policy", []string{
		"environment", "environmental", "climate", "pollution", "renewable", "sustainable", "green",
		"eco", "ecology", "recycle", "energy", "carbon", "emission", "conservation", "nature",
		"policy", "regulatory", "government", "initiatives", "global",
	}},
	{"Product/Review", []string{
		"product", "review", "consumer", "quality", "features", "battery", "camera", "price",
		"software", "glitches", "users", "experience", "model", "expectations", "design",
		"performance", "comparison", "rating", "feedback",
	}},
	{"News/Politics", []string{
		"news", "article", "global", "political", "tensions", "relations", "policy", "government",
		"discussions", "data", "report", "breaking", "world", "local", "election", "campaign",
		"update", "media",
	}},
	{"Business/Corporate", []string{
		"business", "company", "corporate", "market", "strategy", "management", "customer",
		"service", "sales", "marketing", "campaign", "launch", "brand", "competitor", "industry",
		"meeting", "project", "deadline", "collaboration",
	}},
}

// TopicNames lists the topic categories in declaration order.
func TopicNames() []string {
	out := make([]string, len(topicCategories))
	for i, c := range topicCategories {
		out[i] = c.Name
	}
	return out
}

// badWords marks sentences the remote classifier must not report as confidently positive.
var badWords = []string{
	"retard", "idiot", "stupid", "moron", "fool", "dumb", "trash", "garbage", "bastard", "ass",
	"shit", "fuck", "dick", "bitch",
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

package scoring

// stopWords is the closed list of high-frequency function words excluded from
// lexical scoring, covering Chinese and English.
var stopWords = map[string]struct{}{
	// Chinese
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {},
	"就": {}, "不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {},
	"也": {}, "很": {}, "到": {}, "说": {}, "要": {}, "去": {}, "你": {},
	"会": {}, "着": {}, "没有": {}, "这": {}, "那": {}, "什么": {},
	"可以": {}, "因为": {}, "所以": {}, "如果": {}, "我们": {}, "他们": {},
	// English
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "is": {}, "are": {},
	"was": {}, "be": {}, "this": {}, "that": {}, "it": {}, "as": {},
	"at": {}, "by": {},
}

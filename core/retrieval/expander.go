package retrieval

import (
	"strings"

	"github.com/siherrmann/docqa/core/scoring"
)

const expansionKeywordCount = 5

// defaultSynonyms maps domain terms to the synonym terms appended during
// query expansion.
var defaultSynonyms = map[string][]string{
	"机器学习": {"人工智能", "深度学习", "模型训练"},
	"深度学习": {"神经网络", "机器学习"},
	"算法":   {"方法", "模型"},
	"数据":   {"数据集", "样本"},
	"实验":   {"测试", "评估"},
	"方法":   {"方案", "途径"},
	"结果":   {"结论", "发现"},
	"研究":   {"分析", "探讨"},
	"文档":   {"文献", "资料"},
	"摘要":   {"总结", "概要"},
	"model": {"algorithm", "method"},
	"data":  {"dataset", "samples"},
}

// Expander enriches raw queries with synonyms of their extracted keywords
type Expander struct {
	analyzer *scoring.Analyzer
	synonyms map[string][]string
}

// NewExpander creates an expander with the default synonym table
func NewExpander(analyzer *scoring.Analyzer) *Expander {
	return &Expander{
		analyzer: analyzer,
		synonyms: defaultSynonyms,
	}
}

// NewExpanderWithSynonyms creates an expander with a caller-provided table
func NewExpanderWithSynonyms(analyzer *scoring.Analyzer, synonyms map[string][]string) *Expander {
	return &Expander{
		analyzer: analyzer,
		synonyms: synonyms,
	}
}

// Expand appends the synonyms of the query's top keywords to the query. The
// original query is always preserved as a prefix and returned unchanged when
// no keyword matches the table. Expand never fails; on any internal problem
// it returns the original query.
func (e *Expander) Expand(query string) string {
	if e == nil || e.analyzer == nil || strings.TrimSpace(query) == "" {
		return query
	}

	keywords := e.analyzer.Keywords(query, expansionKeywordCount)

	var extra []string
	for _, keyword := range keywords {
		if synonyms, ok := e.synonyms[keyword]; ok {
			extra = append(extra, synonyms...)
		}
	}
	if len(extra) == 0 {
		return query
	}

	return query + " " + strings.Join(extra, " ")
}

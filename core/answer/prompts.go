package answer

// Prompt templates for question answering and summarization. The enhanced
// variants demand grounding in the provided context; the basic variants are
// the fallback when the model rejects the longer instruction.
const enhancedQAPrompt = `你是一个专业的文档分析助手。请基于以下文档内容回答用户的问题。

要求：
1. 只使用文档中提供的信息回答，不要编造内容
2. 如果文档中没有相关信息，请明确说明
3. 回答要准确、完整、条理清晰
4. 适当引用文档中的原文作为依据

文档内容：
%s

用户问题：%s

回答：`

const basicQAPrompt = `根据以下文档内容回答问题。

文档内容：
%s

问题：%s

回答：`

const enhancedSummaryPrompt = `你是一个专业的文档分析助手。请为以下文档内容生成一份结构化的摘要。

要求：
1. 摘要应涵盖文档的主要内容、核心观点和重要结论
2. 使用清晰的段落结构组织内容
3. 保持客观，不要添加文档中没有的信息
4. 摘要长度控制在300至600字之间

文档内容：
%s

摘要：`

const basicSummaryPrompt = `请为以下文档内容生成摘要。

文档内容：
%s

摘要：`

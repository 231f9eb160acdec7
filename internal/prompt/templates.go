package prompt

// Built-in template names.
const (
	Summary          = "summary"
	Takeaways        = "takeaways"
	Compliance       = "compliance"
	ComplianceCustom = "compliance_custom"
	Protocol         = "protocol"
	Chatbot          = "chatbot"
	Banner           = "banner"
	Analyst          = "analyst"
)

const jsonShape = `{
  "compliance_summary": "<summary>",
  "approvals": ["<point1>", "<point2>"],
  "violations": ["<violation1>", "<violation2>"]
}`

const summaryTemplate = `Please provide a comprehensive summary of the following text. The summary should:
1. Capture the main ideas and key points
2. Maintain the original meaning and context
3. Be well-structured and easy to read
4. Be between {{.min_words}} and {{.max_words}} words
5. Focus on the most important information
6. Use clear, professional language

Text to summarize:
{{.text}}

Please provide the summary:
`

const takeawaysTemplate = `List the 5 most important, precise, and meaningful key takeaways from the following text. Each takeaway should be a single line. Do not exceed 5 lines. Be clear and specific.

Text to analyze:
{{.text}}

Key takeaways (one per line):`

const complianceTemplate = `You are a compliance analyst.{{if .domain}} The applicable framework is {{.domain}}.{{end}} Review the following text and analyze it strictly according to the provided compliance protocol. Output a JSON object with the following fields: compliance_summary (a short summary of how compliant the document is), approvals (list of compliant points), violations (list of non-compliant points). Cite specific clauses if possible.

Example JSON output:
` + jsonShape + `

Text to check:
{{.chunk}}`

const complianceCustomTemplate = `{{.instruction}}

Please output ONLY valid JSON in the following format (no explanation):
` + jsonShape + `

Document to analyze:
{{.chunk}}`

const protocolTemplate = `Compliance Protocol: {{.protocol_name}}
Description/Rule: {{.protocol_description}}
{{if .what_to_flag}}What to Flag: {{.what_to_flag}}
{{end}}Severity Threshold: {{.severity_threshold}}
Expected Output Format: {{.output_format}}
Citation Required: {{.citation_required}}
Language: {{.language}}`

const chatbotTemplate = `You are a compliance expert. Only answer questions related to compliance, regulations, and legal protocols. If a user asks about anything else, politely decline and redirect them to compliance topics. Always keep your answers focused on compliance issues.

{{if .context}}Context:
{{.context}}

{{end}}{{.history}}User: {{.question}}
Assistant:`

const bannerTemplate = `Create a social media banner or post for the following campaign.

**Campaign Brief:** {{.campaign_brief}}
**Target Platform:** {{.platform}}
**Key Message:** {{.key_message}}
**Style:** {{.style}}

- Make it visually engaging and concise.
- Include a strong call to action.
- Suggest relevant hashtags.
- Output only the text/copy for the banner/post.
`

const analystTemplate = `You are a marketing analytics expert. Analyze the following campaign data and provide:
- A concise summary of key metrics and trends
- Actionable insights
- Recommendations to improve performance
{{if eq .analysis_type "Anomaly Detection"}}- Detect and explain any anomalies or outliers
{{end}}{{if .goal}}- Consider the campaign goal: {{.goal}}
{{end}}
Data (CSV):
{{.data_csv}}
`

type builtin struct {
	name     string
	text     string
	required []string
}

var builtins = []builtin{
	{Summary, summaryTemplate, []string{"text", "min_words", "max_words"}},
	{Takeaways, takeawaysTemplate, []string{"text"}},
	{Compliance, complianceTemplate, []string{"chunk"}},
	{ComplianceCustom, complianceCustomTemplate, []string{"instruction", "chunk"}},
	{Protocol, protocolTemplate, []string{"protocol_name", "protocol_description"}},
	{Chatbot, chatbotTemplate, []string{"question"}},
	{Banner, bannerTemplate, []string{"campaign_brief", "platform", "key_message", "style"}},
	{Analyst, analystTemplate, []string{"analysis_type", "data_csv"}},
}

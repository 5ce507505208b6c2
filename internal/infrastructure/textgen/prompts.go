package textgen

const issueSystemPrompt = "You are a technical product manager. Always respond with valid JSON only, no additional text or markdown formatting."

const issuePromptTemplate = `You are helping to convert customer {{.Type}} reports into well-structured Linear issues.

Customer Request:
{{.Content}}
{{if .Env}}
Environment: {{.Env}}{{end}}{{if .AppVersion}}
App Version: {{.AppVersion}}{{end}}

Please analyze this {{.Type}} report and provide a structured Linear issue in JSON format with the following fields:
- title: A concise, descriptive title (max 100 characters)
- description: A detailed description with context, steps to reproduce (for bugs), or implementation details (for features)
- labels: An array of relevant label names (e.g., ["bug", "frontend", "ui"] or ["feature", "backend", "api"])
- priority: A priority number where 0 = No priority, 1 = Urgent, 2 = High, 3 = Medium, 4 = Low

Return ONLY valid JSON in this exact format:
{
  "title": "...",
  "description": "...",
  "labels": ["..."],
  "priority": 2
}`

const supportSystemPrompt = "You are a customer support assistant. Write friendly, professional messages."

const creationPromptTemplate = `Generate a friendly, concise confirmation message for a customer who just reported a {{.Type}}.

Customer name: {{or .UserName "Customer"}}
Issue identifier: {{.Identifier}}
Summary: {{.Summary}}

Write a brief, professional message (2-3 sentences) that thanks them for the report,
confirms we created an internal ticket (mention the identifier) and promises to keep them posted.

Keep it warm but professional. Write it in {{.Language}}. Return ONLY the message text, no quotes or additional formatting.`

const resolutionSystemPrompt = "You are a customer support assistant. Explain technical fixes in simple terms."

const resolutionPromptTemplate = `Generate a clear, concise message telling a customer their request has been resolved.

Customer name: {{or .UserName "Customer"}}
Original request: {{.OriginalContent}}
Issue identifier: {{.Identifier}}
{{if .LatestComment}}
Developer explanation: {{.LatestComment}}
{{end}}
Write a short message (3-4 sentences) that confirms {{if eq .Type "bug"}}the bug has been fixed{{else}}the request has been implemented{{end}},
explains where to find it or how to use it based on the developer explanation, and thanks them for their patience.

Write it in {{.Language}}. Return ONLY the message text, no quotes or additional formatting.`

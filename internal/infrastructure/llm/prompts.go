package llm

import "fmt"

// planJSONInstruction 结构化 provider 共用的系统指令
const planJSONInstruction = `You are a project planner. Return ONLY valid JSON. No extra text. Keep file structure simple (max 2 levels deep).

Use exactly this shape:
{
  "title": "Project Title",
  "overview": "Brief description (1-2 sentences)",
  "requirements": ["requirement 1", "requirement 2", "requirement 3"],
  "fileStructure": [
    {
      "name": "src",
      "type": "directory",
      "path": "src/",
      "description": "Source code"
    },
    {
      "name": "package.json",
      "type": "file",
      "path": "package.json",
      "description": "Dependencies"
    }
  ],
  "nextSteps": [
    {
      "id": "step1",
      "description": "Setup project",
      "completed": false,
      "priority": "high",
      "estimatedTime": "30 minutes",
      "dependencies": []
    }
  ]
}`

// planMarkdownInstruction 中继 provider 的系统指令，要求长篇 Markdown 文档
const planMarkdownInstruction = "You are an expert software architect and project planner for Layr AI. " +
	"Generate a comprehensive, highly detailed, and professional project plan based on the user's request.\n\n" +
	"Your response MUST follow this EXACT structure:\n\n" +
	"# Project Title\n" +
	"[Clear, compelling, professional title]\n\n" +
	"## Overview\n" +
	"3-4 paragraphs covering purpose, target users, key features, benefits and technical approach.\n\n" +
	"## Requirements\n\n" +
	"### Functional Requirements\n- [8-12 detailed functional requirements]\n\n" +
	"### Technical Requirements\n- [6-10 technical requirements with rationale]\n\n" +
	"### Non-Functional Requirements\n- Performance: [targets]\n- Security: [measures]\n- Scalability: [requirements]\n- Accessibility: [standards]\n\n" +
	"## Technology Stack\n\n" +
	"### Frontend\n- [framework, state management, UI library]\n\n" +
	"### Backend (if applicable)\n- [server framework, database, authentication, API pattern]\n\n" +
	"### DevOps & Tools\n- [version control, CI/CD, testing, code quality, deployment]\n\n" +
	"## Architecture\n\n" +
	"### System Architecture\n[components, data flow, integration points, patterns]\n\n" +
	"### Key Components\n1. **[Component Name]**: [purpose, responsibilities, interactions]\n\n" +
	"## File Structure\n" +
	"```\n" +
	"project-root/\n" +
	"├── src/\n" +
	"│   ├── components/           # Reusable UI components\n" +
	"│   │   └── Button.tsx\n" +
	"│   └── index.tsx            # Application entry point\n" +
	"├── tests/                   # Test files\n" +
	"├── package.json            # Dependencies and scripts\n" +
	"└── README.md               # Project documentation\n" +
	"```\n\n" +
	"## Implementation Phases\n\n" +
	"### Phase 1: Project Setup & Foundation (Week 1)\n" +
	"**Objectives:** [objectives]\n- [ ] [task]\n**Deliverables:** [deliverables]\n\n" +
	"[Continue with 5-6 phases]\n\n" +
	"## Next Steps\n\n" +
	"### Immediate Actions (Start Today)\n" +
	"1. 🔴 **Set up development environment** (2 hours)\n" +
	"   - [sub-task]\n" +
	"   - *Depends on: None*\n\n" +
	"### Week 1 Priorities\n" +
	"4. 🟡 **Create basic layout components** (4-6 hours)\n" +
	"   - *Depends on: Project initialization*\n\n" +
	"### Ongoing Tasks\n" +
	"10. 🟢 **Set up testing infrastructure** (4-6 hours)\n" +
	"    - *Depends on: Project initialization*\n\n" +
	"Mark priority with 🔴 (high), 🟡 (medium) or 🟢 (low) and put the estimate in parentheses after the step title.\n\n" +
	"## Testing Strategy\n[unit, integration and end-to-end testing]\n\n" +
	"## Deployment Strategy\n[development, staging and production environments]\n\n" +
	"## Maintenance & Future Enhancements\n[maintenance plan and future ideas]\n\n" +
	"---\n\n" +
	"*Generated by Layr AI - Your AI-Powered Project Planning Assistant*"

// planUserPrompt 结构化 provider 的用户消息
func planUserPrompt(prompt string) string {
	return fmt.Sprintf("Create a concise project plan in JSON format for: \"%s\"", prompt)
}

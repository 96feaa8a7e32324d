package planner

import "layr-ai-api/internal/domain/entity"

func dir(name, description string) entity.FileStructureItem {
	return entity.FileStructureItem{Name: name, Type: entity.ItemTypeDirectory, Path: name + "/", Description: description}
}

func file(name, description string) entity.FileStructureItem {
	return entity.FileStructureItem{Name: name, Type: entity.ItemTypeFile, Path: name, Description: description}
}

func step(id, description string, priority entity.Priority, estimate string, deps ...string) entity.PlanStep {
	if deps == nil {
		deps = []string{}
	}
	return entity.PlanStep{
		ID:            id,
		Description:   description,
		Priority:      priority,
		EstimatedTime: estimate,
		Dependencies:  deps,
	}
}

// defaultTemplates 模板池，顺序即匹配时的优先级，第一个为默认模板
func defaultTemplates() []entity.PlanTemplate {
	return []entity.PlanTemplate{
		{
			Name:     "web-application",
			Keywords: []string{"web", "website", "frontend", "react", "vue", "angular", "html", "css", "javascript"},
			Title:    "Web Application Project",
			Overview: "A modern web application with responsive design and interactive features",
			Requirements: []string{
				"Responsive design for mobile and desktop",
				"Modern JavaScript framework (React/Vue/Angular)",
				"CSS preprocessing (Sass/Less)",
				"Build system (Webpack/Vite)",
				"Testing framework (Jest/Vitest)",
				"Code linting and formatting",
				"Version control with Git",
			},
			FileStructure: []entity.FileStructureItem{
				dir("src", "Source code directory"),
				dir("public", "Static assets"),
				dir("tests", "Test files"),
				file("package.json", "Project dependencies"),
				file("README.md", "Project documentation"),
				file(".gitignore", "Git ignore rules"),
			},
			NextSteps: []entity.PlanStep{
				step("init", "Initialize project with package manager", entity.PriorityHigh, "10 minutes"),
				step("framework", "Set up chosen framework", entity.PriorityHigh, "30 minutes", "init"),
				step("styling", "Configure CSS preprocessing", entity.PriorityMedium, "20 minutes", "framework"),
				step("testing", "Set up testing framework", entity.PriorityMedium, "25 minutes", "framework"),
				step("build", "Configure build system", entity.PriorityHigh, "40 minutes", "framework"),
				step("deploy", "Set up deployment pipeline", entity.PriorityLow, "60 minutes", "build"),
			},
		},
		{
			Name:     "backend-api",
			Keywords: []string{"api", "backend", "server", "node", "express", "fastapi", "django", "rest", "graphql"},
			Title:    "Backend API Project",
			Overview: "A robust backend API with authentication, database integration, and comprehensive documentation",
			Requirements: []string{
				"RESTful API design",
				"Database integration (SQL/NoSQL)",
				"Authentication and authorization",
				"Input validation and sanitization",
				"Error handling and logging",
				"API documentation (OpenAPI/Swagger)",
				"Unit and integration testing",
				"Environment configuration",
			},
			FileStructure: []entity.FileStructureItem{
				dir("src", "Source code directory"),
				dir("tests", "Test files"),
				dir("docs", "API documentation"),
				dir("config", "Configuration files"),
				file("package.json", "Project dependencies"),
				file(".env.example", "Environment variables template"),
				file("README.md", "Project documentation"),
			},
			NextSteps: []entity.PlanStep{
				step("setup", "Initialize project and install dependencies", entity.PriorityHigh, "15 minutes"),
				step("server", "Set up basic server structure", entity.PriorityHigh, "30 minutes", "setup"),
				step("database", "Configure database connection", entity.PriorityHigh, "45 minutes", "server"),
				step("auth", "Implement authentication system", entity.PriorityHigh, "90 minutes", "database"),
				step("endpoints", "Create API endpoints", entity.PriorityMedium, "120 minutes", "auth"),
				step("testing", "Write comprehensive tests", entity.PriorityMedium, "60 minutes", "endpoints"),
				step("docs", "Generate API documentation", entity.PriorityLow, "30 minutes", "endpoints"),
			},
		},
		{
			Name:     "mobile-application",
			Keywords: []string{"mobile", "app", "react native", "flutter", "ios", "android", "native"},
			Title:    "Mobile Application Project",
			Overview: "A cross-platform mobile application with native performance and modern UI/UX",
			Requirements: []string{
				"Cross-platform compatibility (iOS/Android)",
				"Native performance optimization",
				"Responsive UI for different screen sizes",
				"Offline functionality and data sync",
				"Push notifications",
				"App store deployment preparation",
				"Testing on real devices",
			},
			FileStructure: []entity.FileStructureItem{
				dir("src", "Source code directory"),
				dir("assets", "Images, fonts, and other assets"),
				dir("tests", "Test files"),
				dir("android", "Android-specific code"),
				dir("ios", "iOS-specific code"),
				file("package.json", "Project dependencies"),
				file("app.json", "App configuration"),
			},
			NextSteps: []entity.PlanStep{
				step("init", "Initialize mobile project", entity.PriorityHigh, "20 minutes"),
				step("navigation", "Set up navigation structure", entity.PriorityHigh, "45 minutes", "init"),
				step("ui", "Create UI components and screens", entity.PriorityMedium, "180 minutes", "navigation"),
				step("state", "Implement state management", entity.PriorityMedium, "60 minutes", "ui"),
				step("api", "Integrate with backend APIs", entity.PriorityMedium, "90 minutes", "state"),
				step("testing", "Test on multiple devices", entity.PriorityHigh, "120 minutes", "api"),
				step("deploy", "Prepare for app store submission", entity.PriorityLow, "180 minutes", "testing"),
			},
		},
	}
}

package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// BuiltinSchemas returns the form definitions of every connector type the
// workspace can configure.
func BuiltinSchemas() []domain.ConnectorSchema {
	return []domain.ConnectorSchema{
		googleDriveSchema(),
		gmailSchema(),
		confluenceSchema(),
		jiraSchema(),
		slackSchema(),
		githubSchema(),
		notionSchema(),
		webSchema(),
		fileSchema(),
		zendeskSchema(),
	}
}

// Shared transforms.

// splitList turns a comma or newline separated string into a trimmed list.
// Lists pass through with empty items removed.
func splitList(v any) any {
	var items []string
	switch t := v.(type) {
	case string:
		items = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == '\n' })
	case []string:
		items = t
	default:
		return v
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// trimURL strips whitespace and trailing slashes from a base URL.
func trimURL(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// lower lower-cases and trims a string value.
func lower(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func googleDriveSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "google_drive",
		Name:        "Google Drive",
		Description: "Index documents, spreadsheets and files from Google Drive.",
		Fields: []domain.Field{
			domain.TabGroupField{
				FieldSpec: domain.FieldSpec{
					Name:  "indexing_scope",
					Label: "What should we index?",
				},
				DefaultTab: "general",
				Tabs: []domain.Tab{
					{
						Name:  "general",
						Label: "General",
						Fields: []domain.Field{
							domain.CheckboxField{FieldSpec: domain.FieldSpec{
								Name:        "include_my_drives",
								Label:       "Include My Drive",
								Description: "Index everything in your own drive.",
								Default:     true,
							}},
							domain.CheckboxField{FieldSpec: domain.FieldSpec{
								Name:        "include_shared_drives",
								Label:       "Include shared drives",
								Description: "Index every shared drive you can access.",
								VisibleWhen: domain.WhenCredentialKind(domain.CredentialKindServiceAccount),
							}},
							domain.CheckboxField{FieldSpec: domain.FieldSpec{
								Name:        "include_files_shared_with_me",
								Label:       "Include files shared with me",
								VisibleWhen: domain.Not(domain.WhenCredentialKind(domain.CredentialKindServiceAccount)),
							}},
						},
					},
					{
						Name:  "specific",
						Label: "Specific folders",
						Fields: []domain.Field{
							domain.TextareaField{FieldSpec: domain.FieldSpec{
								Name:        "shared_folder_urls",
								Label:       "Folder URLs",
								Description: "Comma or newline separated folder links.",
								Required:    true,
								Transform:   splitList,
							}},
							domain.TextareaField{FieldSpec: domain.FieldSpec{
								Name:        "my_drive_emails",
								Label:       "User emails",
								Description: "Index the drives of these users.",
								VisibleWhen: domain.WhenCredentialKind(domain.CredentialKindServiceAccount),
								Transform:   splitList,
							}},
						},
					},
				},
			},
		},
		Advanced: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "google_primary_admin",
				Label:       "Primary admin email",
				Description: "The admin the service account impersonates.",
				Credential:  true,
				Transform:   lower,
			}},
			domain.FileField{
				FieldSpec: domain.FieldSpec{
					Name:        "google_service_account_key",
					Label:       "Service account key",
					Description: "JSON key file of the service account.",
					Secret:      true,
					Credential:  true,
				},
				Accept: []string{".json"},
			},
		},
		AdvancedGate: domain.Not(domain.WhenCredentialKind(domain.CredentialKindOAuth)),
	}
}

func gmailSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "gmail",
		Name:        "Gmail",
		Description: "Index email threads from Gmail.",
		Fields: []domain.Field{
			domain.TextField{
				FieldSpec: domain.FieldSpec{
					Name:        "query",
					Label:       "Search query",
					Description: "Only index messages matching this Gmail query.",
				},
				Placeholder: "label:important newer_than:1y",
			},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:    "include_spam_trash",
				Label:   "Include spam and trash",
				Default: false,
			}},
		},
	}
}

func confluenceSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "confluence",
		Name:        "Confluence",
		Description: "Index pages and attachments from Confluence.",
		Fields: []domain.Field{
			domain.TextField{
				FieldSpec: domain.FieldSpec{
					Name:      "wiki_base",
					Label:     "Wiki base URL",
					Required:  true,
					Transform: trimURL,
				},
				Placeholder: "https://example.atlassian.net/wiki",
			},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:    "is_cloud",
				Label:   "Confluence Cloud",
				Default: true,
			}},
			domain.TabGroupField{
				FieldSpec: domain.FieldSpec{
					Name:  "indexing_scope",
					Label: "What should we index?",
				},
				DefaultTab: "everything",
				Tabs: []domain.Tab{
					{Name: "everything", Label: "Everything"},
					{
						Name:  "space",
						Label: "Space",
						Fields: []domain.Field{
							domain.TextField{FieldSpec: domain.FieldSpec{
								Name:     "space",
								Label:    "Space key",
								Required: true,
							}},
						},
					},
					{
						Name:  "page",
						Label: "Page",
						Fields: []domain.Field{
							domain.TextField{FieldSpec: domain.FieldSpec{
								Name:     "page_id",
								Label:    "Page ID",
								Required: true,
							}},
							domain.CheckboxField{FieldSpec: domain.FieldSpec{
								Name:    "index_recursively",
								Label:   "Include child pages",
								Default: true,
							}},
						},
					},
					{
						Name:  "cql",
						Label: "CQL query",
						Fields: []domain.Field{
							domain.TextareaField{FieldSpec: domain.FieldSpec{
								Name:     "cql_query",
								Label:    "CQL query",
								Required: true,
							}},
						},
					},
				},
			},
		},
		Advanced: []domain.Field{
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:         "scoped_token",
				Label:        "Scoped API token",
				DisabledWhen: domain.Not(domain.WhenTrue("is_cloud")),
			}},
		},
	}
}

func jiraSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "jira",
		Name:        "Jira",
		Description: "Index issues and comments from Jira.",
		Fields: []domain.Field{
			domain.TextField{
				FieldSpec: domain.FieldSpec{
					Name:      "jira_base_url",
					Label:     "Jira base URL",
					Required:  true,
					Transform: trimURL,
				},
				Placeholder: "https://example.atlassian.net",
			},
			domain.SelectField{
				FieldSpec: domain.FieldSpec{
					Name:    "mode",
					Label:   "Scope",
					Default: "everything",
				},
				Options: []domain.Option{
					{Value: "everything", Label: "All projects"},
					{Value: "project", Label: "One project"},
					{Value: "jql", Label: "JQL query"},
				},
			},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "project_key",
				Label:       "Project key",
				Required:    true,
				VisibleWhen: domain.WhenEquals("mode", "project"),
				Transform: func(v any) any {
					s, ok := v.(string)
					if !ok {
						return v
					}
					return strings.ToUpper(strings.TrimSpace(s))
				},
			}},
			domain.TextareaField{FieldSpec: domain.FieldSpec{
				Name:        "jql_query",
				Label:       "JQL query",
				Required:    true,
				VisibleWhen: domain.WhenEquals("mode", "jql"),
			}},
		},
		Advanced: []domain.Field{
			domain.ListField{FieldSpec: domain.FieldSpec{
				Name:        "comment_email_blacklist",
				Label:       "Ignore comments from",
				Description: "Emails whose comments are skipped.",
				Transform:   splitList,
			}},
		},
	}
}

func slackSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "slack",
		Name:        "Slack",
		Description: "Index public channel messages from Slack.",
		RefreshFreq: 10 * time.Minute,
		Fields: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "slack_bot_token",
				Label:       "Bot token",
				Required:    true,
				Secret:      true,
				Credential:  true,
				Description: "Token starting with xoxb-.",
				VisibleWhen: domain.WhenNoCredential(),
			}},
			domain.ListField{FieldSpec: domain.FieldSpec{
				Name:        "channels",
				Label:       "Channels",
				Description: "Leave empty to index every channel the bot is in.",
				Transform:   splitList,
			}},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:  "channel_regex_enabled",
				Label: "Treat channels as regular expressions",
				DisabledWhen: func(values domain.FormValues, _ *domain.Credential) bool {
					list, _ := splitList(values["channels"]).([]string)
					return len(list) == 0
				},
			}},
		},
	}
}

func githubSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "github",
		Name:        "GitHub",
		Description: "Index issues, pull requests and code from GitHub repositories.",
		Fields: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "github_access_token",
				Label:       "Personal access token",
				Required:    true,
				Secret:      true,
				Credential:  true,
				VisibleWhen: domain.WhenNoCredential(),
			}},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:     "repo_owner",
				Label:    "Owner",
				Required: true,
			}},
			domain.TabGroupField{
				FieldSpec: domain.FieldSpec{
					Name:  "repository_scope",
					Label: "Repositories",
				},
				DefaultTab: "all",
				Tabs: []domain.Tab{
					{Name: "all", Label: "All repositories"},
					{
						Name:  "selected",
						Label: "Selected repositories",
						Fields: []domain.Field{
							domain.ListField{FieldSpec: domain.FieldSpec{
								Name:      "repositories",
								Label:     "Repository names",
								Required:  true,
								Transform: splitList,
							}},
						},
					},
				},
			},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:    "include_prs",
				Label:   "Include pull requests",
				Default: true,
			}},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:    "include_issues",
				Label:   "Include issues",
				Default: true,
			}},
		},
	}
}

func notionSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "notion",
		Name:        "Notion",
		Description: "Index pages and databases from Notion.",
		Fields: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "notion_integration_token",
				Label:       "Integration token",
				Required:    true,
				Secret:      true,
				Credential:  true,
				VisibleWhen: domain.WhenNoCredential(),
			}},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "root_page_id",
				Label:       "Root page ID",
				Description: "Only index this page and its children.",
			}},
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:         "recursive_index_enabled",
				Label:        "Index child pages recursively",
				DisabledWhen: domain.WhenEquals("root_page_id", ""),
			}},
		},
	}
}

func webSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "web",
		Name:        "Web",
		Description: "Crawl and index a website.",
		RefreshFreq: 24 * time.Hour,
		Fields: []domain.Field{
			domain.TextField{
				FieldSpec: domain.FieldSpec{
					Name:      "base_url",
					Label:     "URL",
					Required:  true,
					Transform: func(v any) any { return strings.TrimSpace(asString(v)) },
				},
				Placeholder: "https://docs.example.com",
			},
			domain.SelectField{
				FieldSpec: domain.FieldSpec{
					Name:    "web_connector_type",
					Label:   "Scrape method",
					Default: "recursive",
				},
				Options: []domain.Option{
					{Value: "recursive", Label: "Recursive"},
					{Value: "single", Label: "Single page"},
					{Value: "sitemap", Label: "Sitemap"},
				},
			},
		},
		Advanced: []domain.Field{
			domain.CheckboxField{FieldSpec: domain.FieldSpec{
				Name:        "scroll_before_scraping",
				Label:       "Scroll before scraping",
				Description: "Load lazily rendered content first.",
			}},
			domain.NumberField{FieldSpec: domain.FieldSpec{
				Name:        "max_depth",
				Label:       "Maximum crawl depth",
				VisibleWhen: domain.WhenEquals("web_connector_type", "recursive"),
			}},
		},
	}
}

func fileSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "file",
		Name:        "File",
		Description: "Index files uploaded from this machine.",
		Fields: []domain.Field{
			domain.FileField{
				FieldSpec: domain.FieldSpec{
					Name:        "file_locations",
					Label:       "Files",
					Description: "Comma separated local paths.",
					Required:    true,
					Transform:   splitList,
				},
				Accept: []string{".pdf", ".docx", ".txt", ".md", ".csv", ".zip"},
			},
		},
	}
}

func zendeskSchema() domain.ConnectorSchema {
	return domain.ConnectorSchema{
		ID:          "zendesk",
		Name:        "Zendesk",
		Description: "Index help center articles and tickets from Zendesk.",
		Fields: []domain.Field{
			domain.TextField{
				FieldSpec: domain.FieldSpec{
					Name:        "zendesk_subdomain",
					Label:       "Subdomain",
					Required:    true,
					Credential:  true,
					Transform:   lower,
					VisibleWhen: domain.WhenNoCredential(),
				},
				Placeholder: "example",
			},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "zendesk_email",
				Label:       "Email",
				Required:    true,
				Credential:  true,
				VisibleWhen: domain.WhenNoCredential(),
			}},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "zendesk_token",
				Label:       "API token",
				Required:    true,
				Secret:      true,
				Credential:  true,
				VisibleWhen: domain.WhenNoCredential(),
			}},
			domain.SelectField{
				FieldSpec: domain.FieldSpec{
					Name:    "content_type",
					Label:   "Content",
					Default: "articles",
				},
				Options: []domain.Option{
					{Value: "articles", Label: "Help center articles"},
					{Value: "tickets", Label: "Tickets"},
				},
			},
		},
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

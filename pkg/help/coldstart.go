package help

const ColdstartYAML = `# hoverpeek Quick Start

resource_types:
  webpage: "HTML page, partial fetch up to 48KB"
  pdf: "PDF document, partial fetch up to 2MB"
  image: "Raster image, partial fetch up to 5MB"
  video: "Known platform (YouTube, Vimeo), no fetch"
  download: "Binary attachment, HEAD only"
  blocked: "Unsafe scheme or protocol, never fetched"

risk_tiers:
  green: "No findings"
  amber: "Caution (homograph, HTTP downgrade, redirect chains)"
  red: "Dangerous (unsafe scheme, executable payload)"

commands:
  classify_link: |
    hoverpeek classify --url "https://example.com/report.pdf"

  classify_relative: |
    hoverpeek classify --url "/docs/guide" --origin "https://example.com/start"

  mismatch_check: |
    hoverpeek classify --url "https://evil.example" --text "paypal.com login"

  preview: |
    hoverpeek preview --url "https://example.com/article"

  preview_streaming: |
    hoverpeek preview --url "https://example.com/article" --stream

  capability: |
    hoverpeek capability status
    hoverpeek capability download

  clear_cache: |
    hoverpeek cache clear

cache_system:
  - "Three namespaces: preflight, preview, titles"
  - "Entries expire after 5 minutes (cache_ttl in config)"
  - "In-memory tier backed by SQLite (cache_db in config)"
  - "A missing or broken DB file degrades to memory-only"

config:
  - "Config loads from hoverpeek.yaml (override with --config)"
  - "Missing config file uses built-in defaults"
  - "AI previews need the API key named by api_key_env (default ANTHROPIC_API_KEY)"
  - "Set disable_preview: true to run classification only"

error_behavior:
  - "Classification never fails: unreachable targets degrade to webpage/amber"
  - "Unsafe schemes (javascript:, data:, file:) are blocked without network I/O"
  - "Bot-protected sites fall back to basic info"
  - "Exit codes: 0=success, 1=bad usage, 2=internal failure"
`

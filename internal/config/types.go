package config

const (
	// ProjectFile holds optional per-project defaults next to package.json.
	ProjectFile = "osrc.yml"
	// EnvFile is loaded from the project root before the environment is read.
	EnvFile = ".env"

	DefaultRemote     = "https://www.osrc.com"
	DefaultPagesHost  = "https://os.osrc.com"
	DefaultSignInPath = "/api/users/signin"
	DefaultTokenEnv   = "OSRC_APP_TOKEN"
	DefaultDirname    = "dist"
	DefaultLogLevel   = "info"
	SessionFileName   = ".osrc"

	EmojiWarning = "⚠️"
)

// Settings is the resolved configuration for one CLI invocation.
type Settings struct {
	Remote      string // default remote when the session has none
	PagesHost   string // base of the hosted page URL printed after a deploy
	SignInPath  string
	TokenEnv    string // name of the variable that supplies a fallback access token
	SessionFile string
	Dirname     string
	LogLevel    string
	NoKeyring   bool
}

// ProjectConfig is the content of osrc.yml.
type ProjectConfig struct {
	Dirname string `yaml:"dirname,omitempty"`
	Remote  string `yaml:"remote,omitempty"`
}

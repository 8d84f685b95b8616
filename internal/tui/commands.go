package tui

import "strings"

// CommandKind identifies a slash command typed into the chat input.
type CommandKind int

const (
	// CommandNone means the input is a plain chat message.
	CommandNone CommandKind = iota
	// CommandAttach attaches a catalog CSV: /attach <path>.
	CommandAttach
	// CommandLaunch forces the synthesis pipeline: //launch.
	CommandLaunch
	// CommandDeploy forces a deployment: //deploy.
	CommandDeploy
	// CommandCrawl imports brand identity from a website: /crawl <url>.
	CommandCrawl
	// CommandQuit exits the app: //quit.
	CommandQuit
	// CommandHelp prints the command list: /help.
	CommandHelp
)

// Command is a parsed input line.
type Command struct {
	Kind CommandKind
	// Arg is the command argument (the file path for attach).
	Arg string
}

// ParseCommand interprets the chat input. Double-slash commands bypass
// the assistant brain entirely; /attach takes a file path argument.
// Anything else is a chat message.
func ParseCommand(input string) Command {
	trimmed := strings.TrimSpace(input)

	switch trimmed {
	case "//launch":
		return Command{Kind: CommandLaunch}
	case "//deploy":
		return Command{Kind: CommandDeploy}
	case "//quit", "//exit":
		return Command{Kind: CommandQuit}
	case "/help":
		return Command{Kind: CommandHelp}
	}

	if rest, ok := strings.CutPrefix(trimmed, "/attach "); ok {
		return Command{Kind: CommandAttach, Arg: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(trimmed, "/crawl "); ok {
		return Command{Kind: CommandCrawl, Arg: strings.TrimSpace(rest)}
	}

	return Command{Kind: CommandNone, Arg: trimmed}
}

const helpText = `Commands:
  /attach <path>   attach a product catalog CSV
  /crawl <url>     import brand identity from an existing site
  //launch         build the storefront now
  //deploy         deploy the last built storefront
  //quit           exit
Anything else is sent to the assistant.`

package mcpserver

// LayoutContract describes the directory layout menushell turns into menus.
const LayoutContract = `# menushell Layout Contract

The menu tree mirrors one root directory. Every directory that holds an
action file or a metadata file, or has such a directory beneath it, becomes
a menu. Each action file becomes a menu of its own whose options run the
file's functions.

## Structure

` + "```" + `text
tools/                     # root: its menu is entered after picking a project
  deploy/
    deploy.txt             # metadata for the "deploy" menu (same name as the dir)
    prod.sh                # action unit: every top-level function is an action
    report.go              # action unit: every top-level func() is an action
  db/
    migrate.sh
projects/
  alpha/                   # every subdirectory is a selectable project
  beta/
` + "```" + `

## Rules

1. **Options are numbered from 1.** A directory menu lists its action files
   (sorted by name, extension stripped) then its subdirectories (sorted), then
   ` + "`" + `GO_BACK` + "`" + ` as the last option.
2. **Action order is declaration order.** Functions appear in the order they
   are written in the file, followed by ` + "`" + `GO_BACK` + "`" + `.
3. **Metadata labels** are ` + "`" + `Title:` + "`" + `, ` + "`" + `Subtitle:` + "`" + ` and ` + "`" + `Description:` + "`" + `.
   Each value runs from after the label to the end of that line. Folder
   metadata lives in ` + "`" + `<dirname>.txt` + "`" + ` inside the directory; unit metadata is
   the file's leading comment block.
4. **Reserved directories** (` + "`" + `__pycache__` + "`" + `, ` + "`" + `.git` + "`" + `, ` + "`" + `node_modules` + "`" + ` by
   default) are never traversed.
5. **Menu keys** are the root directory name joined with the slash-separated
   relative path, e.g. ` + "`" + `tools/deploy/prod.sh` + "`" + `. ` + "`" + `PROJECT_MENU` + "`" + ` and
   ` + "`" + `EXIT_MENU` + "`" + ` are reserved.
6. **Shell units** (` + "`" + `.sh` + "`" + `): each top-level ` + "`" + `name() { ... }` + "`" + ` is an action.
   The file body runs before the function, in the file's directory.
7. **Go units** (` + "`" + `.go` + "`" + `): each top-level function with no receiver, parameters
   or results (other than ` + "`" + `main` + "`" + ` and ` + "`" + `init` + "`" + `) is an action. Units are
   interpreted, standard library only.

## Example

` + "```" + `sh
# Title: Production
# Subtitle: release tooling
# Description: Ship or roll back the production build.

release() {
  echo "releasing"
}

rollback() {
  echo "rolling back"
}
` + "```" + `
`

package cli

// asciiLogo is printed by the root help and the version command.
const asciiLogo = `  __     _
 / _|___| |_ __ _  __ _  ___
| |_/ __| __/ _` + "`" + ` |/ _` + "`" + ` |/ _ \
|  _\__ \ || (_| | (_| |  __/
|_| |___/\__\__,_|\__, |\___|
                  |___/`

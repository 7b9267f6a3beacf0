// Package safety provides the local, static pre-execution gate for commands
// the model proposes. Classification is a pure function of the command
// string: no network, no filesystem checks, no state. The rule set leans
// toward over-matching: a safe command asked to confirm is an annoyance, a
// destructive command waved through is the failure mode this package exists
// to prevent.
package safety

import "strings"

// dangerousCommands fire when the command starts with the entry, or the
// entry appears right after a pipe segment or after "sudo ".
var dangerousCommands = []string{
	// File deletion
	"rm", "rmdir", "unlink", "shred",
	// System control
	"shutdown", "reboot", "poweroff", "halt", "init",
	// Disk/filesystem
	"mkfs", "fdisk", "parted", "dd", "format", "mkswap",
	// Package removal can break the system
	"apt-get remove", "apt remove", "apt-get purge", "apt purge",
	"yum remove", "dnf remove", "pacman -r",
	// Permission/ownership
	"chmod 777", "chmod -r", "chown -r", "chgrp -r",
	// Network
	"iptables -f", "ufw disable",
	// Process control
	"kill -9", "killall", "pkill",
	// User management
	"userdel", "deluser", "passwd",
	// Elevated privileges
	"sudo",
}

// dangerousPatterns fire anywhere in the lowercased command.
var dangerousPatterns = []string{
	// Redirects into devices, system configs, boot, or root paths
	"> /dev/", ">/dev/",
	"> /etc/", ">/etc/",
	"> /boot/", ">/boot/",
	"> /",
	"| tee /", "|tee /",
	// Piping into destructive or arbitrary-execution commands
	"| rm", "|rm",
	"| dd", "|dd",
	"| sh", "|sh",
	"| bash", "|bash",
	// rm -rf variants against root, home, or the working tree
	"rf /", "rf ~/", "rf ~", "rf .", "rf *",
	"rm -r /",
	// Moving the root tree
	"mv /* ", "mv / ",
	// Permission stripping
	"chmod 000",
	"chmod -r 777 /",
	// Fork bomb signatures
	":(){", ":(){ :",
	// Raw device sources
	"dd if=",
	"/dev/zero", "/dev/random",
	"/dev/null >",
}

// sudoMutators trigger the secondary scan: sudo anywhere plus one of these
// verbs anywhere is dangerous regardless of position.
var sudoMutators = []string{"rm", "dd", "mkfs", "chmod", "chown", "mv", "cp"}

// IsDangerous classifies a candidate shell command. Case-insensitive, pure,
// and deterministic.
func IsDangerous(command string) bool {
	lower := strings.ToLower(command)

	for _, entry := range dangerousCommands {
		if strings.HasPrefix(lower, entry) {
			return true
		}
		if strings.Contains(lower, "| "+entry) || strings.Contains(lower, "|"+entry) {
			return true
		}
		if strings.Contains(lower, "sudo "+entry) {
			return true
		}
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	if strings.Contains(lower, "sudo") {
		for _, verb := range sudoMutators {
			if strings.Contains(lower, verb) {
				return true
			}
		}
	}

	return false
}

// Warnings returns targeted advisories for specific hazard shapes, used by
// the simulator alongside the boolean verdict.
func Warnings(command string) []string {
	lower := strings.ToLower(command)
	var out []string

	if strings.Contains(lower, "rm") {
		if strings.Contains(lower, "-rf") || strings.Contains(lower, "-r") {
			out = append(out, "This command removes files or directories recursively.")
		}
		if strings.Contains(command, "*") {
			out = append(out, "The wildcard (*) may match more files than you expect.")
		}
	}
	if strings.Contains(lower, "chmod") && strings.Contains(command, "777") {
		out = append(out, "chmod 777 strips every security restriction from the target.")
	}

	return out
}

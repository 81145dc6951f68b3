// Package templates provides starter code used when scaffolding cannot be generated.
package templates

import "github.com/verte-zerg/codetutor/internal/model"

// Generic is used for languages without a dedicated template.
const Generic = "// Write your code here\n"

var builtin = map[model.Language]string{
	model.LanguagePython: `# Write your Python code here

def main():
    pass


if __name__ == "__main__":
    main()
`,
	model.LanguageJavaScript: `// Write your JavaScript code here

function main() {
}

main();
`,
	model.LanguageJava: `// Write your Java code here

public class Main {
    public static void main(String[] args) {
    }
}
`,
	model.LanguageCPP: `// Write your C++ code here
#include <iostream>

int main() {
    return 0;
}
`,
	model.LanguageCSharp: `// Write your C# code here
using System;

class Program {
    static void Main(string[] args) {
    }
}
`,
	model.LanguageGo: `// Write your Go code here
package main

import "fmt"

func main() {
	fmt.Println()
}
`,
	model.LanguageRust: `// Write your Rust code here

fn main() {
}
`,
	model.LanguagePHP: `<?php
// Write your PHP code here

function main() {
}

main();
`,
	model.LanguageRuby: `# Write your Ruby code here

def main
end

main
`,
	model.LanguageSwift: `// Write your Swift code here
import Foundation

func main() {
}

main()
`,
}

// Default returns the built-in template for lang.
func Default(lang model.Language) string {
	if tmpl, ok := builtin[lang]; ok {
		return tmpl
	}
	return Generic
}

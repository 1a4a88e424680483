package tools

// GreetingURITemplate is the resource template served alongside the tools.
const GreetingURITemplate = "greeting://{name}"

func Greeting(name string) string {
	return "Hello, " + name + "!"
}

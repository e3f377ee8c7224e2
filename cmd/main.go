package main

import "github.com/adanyl0v/go-todo-attachments/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustInitTaskStore()
	defer app.CloseTaskStore()
	app.MustInitObjectStore()

	app.MustListenAndServeHTTP()
}

package main

import "teaps/internal/app/server"

func main() {
	server.Run()
}

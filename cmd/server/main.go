package main

import "epms/internal/app/server"

func main() {
	server.Run()
}

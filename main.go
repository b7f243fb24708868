/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/leadflowhq/lead-services/cmd"

func main() {
	cmd.Execute()
}

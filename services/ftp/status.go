/*
* Honeytrap
* Copyright (C) 2016-2018 DutchSec (https://dutchsec.com/)
*
* This program is free software; you can redistribute it and/or modify it under
* the terms of the GNU Affero General Public License version 3 as published by the
* Free Software Foundation.
*
* This program is distributed in the hope that it will be useful, but WITHOUT
* ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
* FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for more
* details.
*
* You should have received a copy of the GNU Affero General Public License
* version 3 along with this program in the file "LICENSE".  If not, see
* <http://www.gnu.org/licenses/agpl-3.0.txt>.
*
* See https://honeytrap.io/ for more details. All requests should be sent to
* licensing@honeytrap.io
*
* The interactive user interfaces in modified source and object code versions
* of this program must display Appropriate Legal Notices, as required under
* Section 5 of the GNU Affero General Public License version 3.
*
* In accordance with Section 7(b) of the GNU Affero General Public License version 3,
* these Appropriate Legal Notices must retain the display of the "Powered by
* Honeytrap" logo and retain the original copyright notice. If the display of the
* logo is not reasonably feasible for technical reasons, the Appropriate Legal Notices
* must display the words "Powered by Honeytrap" and retain the original copyright notice.
 */
package ftp

// FTP status codes, defined in RFC 959
const (
	StatusAboutToSend = 150

	StatusCommandOK             = 200
	StatusCommandNotImplemented = 202
	StatusSystem                = 211
	StatusFile                  = 213
	StatusHelp                  = 214
	StatusName                  = 215
	StatusReady                 = 220
	StatusClosing               = 221
	StatusClosingDataConnection = 226
	StatusPassiveMode           = 227
	StatusExtendedPassiveMode   = 229
	StatusLoggedIn              = 230
	StatusRequestedFileActionOK = 250
	StatusPathCreated           = 257

	StatusUserOK             = 331
	StatusRequestFilePending = 350

	StatusCanNotOpenDataConnection = 425
	StatusTransfertAborted         = 426
	StatusActionAborted            = 451

	StatusBadCommand              = 500
	StatusBadArguments            = 501
	StatusNotImplemented          = 502
	StatusBadSequence             = 503
	StatusNotImplementedParameter = 504
	StatusNotLoggedIn             = 530
	StatusFileUnavailable         = 550
	StatusBadFileName             = 553
)

var statusText = map[int]string{
	StatusAboutToSend: "File status okay; about to open data connection.",

	StatusCommandOK:             "OK.",
	StatusCommandNotImplemented: "Command not implemented, superfluous at this site.",
	StatusSystem:                "System status, or system help reply.",
	StatusFile:                  "File status.",
	StatusHelp:                  "Help message.",
	StatusName:                  "UNIX Type: L8",
	StatusReady:                 "Service ready for new user.",
	StatusClosing:               "Goodbye.",
	StatusClosingDataConnection: "Transfer complete.",
	StatusPassiveMode:           "Entering Passive Mode.",
	StatusExtendedPassiveMode:   "Entering Extended Passive Mode.",
	StatusLoggedIn:              "Login successful.",
	StatusRequestedFileActionOK: "Requested file action okay, completed.",
	StatusPathCreated:           "Path created.",

	StatusUserOK:             "Username ok, send password.",
	StatusRequestFilePending: "Requested file action pending further information.",

	StatusCanNotOpenDataConnection: "Can't open data connection.",
	StatusTransfertAborted:         "Connection closed; transfer aborted.",
	StatusActionAborted:            "Requested action aborted. Local error in processing.",

	StatusBadCommand:              "Command not understood.",
	StatusBadArguments:            "Syntax error in parameters or arguments.",
	StatusNotImplemented:          "Command not implemented.",
	StatusBadSequence:             "Bad sequence of commands.",
	StatusNotImplementedParameter: "Command not implemented for that parameter.",
	StatusNotLoggedIn:             "Log in with USER and PASS first.",
	StatusFileUnavailable:         "File unavailable.",
	StatusBadFileName:             "File name not allowed.",
}
